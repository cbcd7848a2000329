package media

import (
	"context"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"
)

type MediaRepository interface {
	Create(ctx context.Context, f *domain.MediaFile) error
	GetOwned(ctx context.Context, id, ownerID string) (*domain.MediaFile, error)
	List(ctx context.Context, ownerID string, filter domain.MediaFilter, p pagination.Params) (domain.Page[domain.MediaFile], error)
	Update(ctx context.Context, id, ownerID string, patch domain.MediaPatch) (*domain.MediaFile, error)
	SetStatus(ctx context.Context, id string, status domain.MediaStatus, processedAt *time.Time, errMsg string) error
	Delete(ctx context.Context, id, ownerID string) error
}

// CampaignChecker confirms that an upload targets a campaign of the caller.
type CampaignChecker interface {
	Exists(ctx context.Context, id, ownerID string) (bool, error)
}

// Processor runs the post-upload pipeline for a stored file.
type Processor interface {
	Process(ctx context.Context, f *domain.MediaFile) error
}

// PassThrough is the default Processor: files are ready as soon as they are stored.
type PassThrough struct{}

func (PassThrough) Process(context.Context, *domain.MediaFile) error { return nil }
