package campaign

import (
	"encoding/json"
	"fmt"
	"time"

	"campaignhub/internal/domain"
)

// Timestamp accepts RFC 3339 timestamps as well as bare dates ("2025-01-01"),
// which are read as midnight UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (t *Timestamp) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

type CreateCampaignRequest struct {
	Name            string                  `json:"name" validate:"required,max=200"`
	Description     string                  `json:"description" validate:"max=1000"`
	Budget          float64                 `json:"budget" validate:"gt=0"`
	Demographics    domain.Attributes       `json:"demographics"`
	Channel         string                  `json:"channel" validate:"required,max=100"`
	StartDate       *Timestamp              `json:"start_date" validate:"required"`
	EndDate         *Timestamp              `json:"end_date" validate:"required"`
	Priority        domain.CampaignPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TargetLocations []domain.GeoLocation    `json:"target_locations"`
	MediaFiles      []string                `json:"media_files"`
}

type UpdateCampaignRequest struct {
	Name            *string                  `json:"name" validate:"omitempty,max=200"`
	Description     *string                  `json:"description" validate:"omitempty,max=1000"`
	Budget          *float64                 `json:"budget" validate:"omitempty,gt=0"`
	Demographics    *domain.Attributes       `json:"demographics"`
	Channel         *string                  `json:"channel" validate:"omitempty,max=100"`
	StartDate       *Timestamp               `json:"start_date"`
	EndDate         *Timestamp               `json:"end_date"`
	Priority        *domain.CampaignPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TargetLocations *[]domain.GeoLocation    `json:"target_locations"`
	MediaFiles      *[]string                `json:"media_files"`
}

func (r UpdateCampaignRequest) Patch() domain.CampaignPatch {
	return domain.CampaignPatch{
		Name:            r.Name,
		Description:     r.Description,
		Budget:          r.Budget,
		Demographics:    r.Demographics,
		Channel:         r.Channel,
		StartDate:       r.StartDate.ptr(),
		EndDate:         r.EndDate.ptr(),
		Priority:        r.Priority,
		TargetLocations: r.TargetLocations,
		MediaFiles:      r.MediaFiles,
	}
}

type UpdateStatusRequest struct {
	Status domain.CampaignStatus `json:"status" validate:"required"`
}

type ListQuery struct {
	Page   int    `form:"page"`
	Size   int    `form:"size"`
	Status string `form:"status"`
	Search string `form:"search"`
}
