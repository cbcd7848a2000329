package domain

import "time"

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio, MediaDocument:
		return true
	}
	return false
}

type MediaStatus string

const (
	MediaUploading  MediaStatus = "uploading"
	MediaProcessing MediaStatus = "processing"
	MediaReady      MediaStatus = "ready"
	MediaError      MediaStatus = "error"
	MediaDeleted    MediaStatus = "deleted"
)

// Progress is the coarse completion percentage reported for a status.
func (s MediaStatus) Progress() int {
	switch s {
	case MediaUploading:
		return 25
	case MediaProcessing:
		return 75
	case MediaReady:
		return 100
	}
	return 0
}

type MediaFile struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	CampaignID       string      `json:"campaign_id"`
	Filename         string      `json:"filename"`
	OriginalFilename string      `json:"original_filename"`
	FileType         MediaType   `json:"file_type"`
	MimeType         string      `json:"mime_type"`
	Size             int64       `json:"size"`
	StorageKey       string      `json:"-"`
	URL              string      `json:"url"`
	ThumbnailURL     string      `json:"thumbnail_url,omitempty"`
	Status           MediaStatus `json:"status"`
	Metadata         Attributes  `json:"metadata,omitempty"`
	ErrorMessage     string      `json:"error_message,omitempty"`
	UploadDate       time.Time   `json:"upload_date"`
	ProcessedDate    *time.Time  `json:"processed_date,omitempty"`
}

type MediaPatch struct {
	Filename *string
	Metadata *Attributes
}

func (p MediaPatch) Empty() bool {
	return p.Filename == nil && p.Metadata == nil
}

type MediaFilter struct {
	CampaignID string
	FileType   MediaType
}
