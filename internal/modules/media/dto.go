package media

import (
	"io"

	"campaignhub/internal/domain"
)

// Upload describes one incoming file. Size and ContentType come from the
// multipart header and are checked before Body is read.
type Upload struct {
	CampaignID  string
	FileType    domain.MediaType
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type UploadResponse struct {
	FileID   string             `json:"file_id"`
	Filename string             `json:"filename"`
	URL      string             `json:"url"`
	Status   domain.MediaStatus `json:"status"`
	Message  string             `json:"message"`
}

type ProcessingStatus struct {
	FileID   string             `json:"file_id"`
	Status   domain.MediaStatus `json:"status"`
	Progress int                `json:"progress"`
	Message  string             `json:"message,omitempty"`
}

type UpdateMediaRequest struct {
	Filename *string            `json:"filename" validate:"omitempty,min=1,max=255"`
	Metadata *domain.Attributes `json:"metadata"`
}

func (r UpdateMediaRequest) Patch() domain.MediaPatch {
	return domain.MediaPatch{Filename: r.Filename, Metadata: r.Metadata}
}

type ListQuery struct {
	Page       int    `form:"page"`
	Size       int    `form:"size"`
	CampaignID string `form:"campaign_id"`
	FileType   string `form:"file_type"`
}
