package campaign

import (
	"context"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"
)

// CampaignRepository is the owner scoped store behind the service.
type CampaignRepository interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetOwned(ctx context.Context, id, ownerID string) (*domain.Campaign, error)
	List(ctx context.Context, ownerID string, filter domain.CampaignFilter, p pagination.Params) (domain.Page[domain.Campaign], error)
	Update(ctx context.Context, id, ownerID string, patch domain.CampaignPatch) (*domain.Campaign, error)
	UpdateStatus(ctx context.Context, id, ownerID string, from, to domain.CampaignStatus, at time.Time) (*domain.Campaign, error)
	Delete(ctx context.Context, id, ownerID string) error
}
