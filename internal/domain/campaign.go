package domain

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignActive    CampaignStatus = "active"
	CampaignPaused    CampaignStatus = "paused"
	CampaignFinished  CampaignStatus = "finished"
	CampaignCancelled CampaignStatus = "cancelled"
)

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignActive, CampaignPaused, CampaignFinished, CampaignCancelled:
		return true
	}
	return false
}

type CampaignPriority string

const (
	PriorityLow    CampaignPriority = "low"
	PriorityMedium CampaignPriority = "medium"
	PriorityHigh   CampaignPriority = "high"
	PriorityUrgent CampaignPriority = "urgent"
)

func (p CampaignPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Campaign struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Budget           float64          `json:"budget"`
	Demographics     Attributes       `json:"demographics"`
	Channel          string           `json:"channel"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Priority         CampaignPriority `json:"priority"`
	Status           CampaignStatus   `json:"status"`
	TargetLocations  []GeoLocation    `json:"target_locations"`
	MediaFiles       []string         `json:"media_files"`
	ViewsCount       int64            `json:"views_count"`
	ClicksCount      int64            `json:"clicks_count"`
	ConversionsCount int64            `json:"conversions_count"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CampaignPatch is a partial update. Status is changed only through the
// lifecycle, never through a patch.
type CampaignPatch struct {
	Name            *string
	Description     *string
	Budget          *float64
	Demographics    *Attributes
	Channel         *string
	StartDate       *time.Time
	EndDate         *time.Time
	Priority        *CampaignPriority
	TargetLocations *[]GeoLocation
	MediaFiles      *[]string
}

func (p CampaignPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Budget == nil && p.Demographics == nil &&
		p.Channel == nil && p.StartDate == nil && p.EndDate == nil && p.Priority == nil &&
		p.TargetLocations == nil && p.MediaFiles == nil
}

// Apply returns a copy of c with the patch fields applied.
func (p CampaignPatch) Apply(c Campaign) Campaign {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Budget != nil {
		c.Budget = *p.Budget
	}
	if p.Demographics != nil {
		c.Demographics = *p.Demographics
	}
	if p.Channel != nil {
		c.Channel = *p.Channel
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		c.EndDate = *p.EndDate
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.TargetLocations != nil {
		c.TargetLocations = *p.TargetLocations
	}
	if p.MediaFiles != nil {
		c.MediaFiles = *p.MediaFiles
	}
	return c
}

type CampaignFilter struct {
	Status CampaignStatus
	Search string
}

type CampaignStats struct {
	CampaignID        string    `json:"campaign_id"`
	Views             int64     `json:"views"`
	Clicks            int64     `json:"clicks"`
	Conversions       int64     `json:"conversions"`
	CTR               float64   `json:"ctr"`
	ConversionRate    float64   `json:"conversion_rate"`
	CostPerClick      float64   `json:"cost_per_click"`
	CostPerConversion float64   `json:"cost_per_conversion"`
	TotalSpent        float64   `json:"total_spent"`
	LastUpdated       time.Time `json:"last_updated"`
}
