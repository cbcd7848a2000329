package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"campaignhub/internal/cache"
	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/geo"
	"campaignhub/internal/pkg/pagination"
)

const (
	cacheKind = "campaigns"

	// ItemTTL bounds how stale the counters on a cached campaign can get.
	ItemTTL = 30 * time.Second
)

type Service struct {
	campaigns CampaignRepository
	cache     cache.Cache
	keys      cache.Keys
	ttl       time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(campaigns CampaignRepository, c cache.Cache, keys cache.Keys, ttl time.Duration, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if ttl <= 0 {
		ttl = cache.DefaultListTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		campaigns: campaigns,
		cache:     c,
		keys:      keys,
		ttl:       ttl,
		logger:    logger.With(slog.String("module", "campaign")),
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, req CreateCampaignRequest) (*domain.Campaign, error) {
	c := &domain.Campaign{
		UserID:          ownerID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		Budget:          req.Budget,
		Demographics:    req.Demographics,
		Channel:         strings.TrimSpace(req.Channel),
		Priority:        req.Priority,
		Status:          domain.CampaignDraft,
		TargetLocations: req.TargetLocations,
		MediaFiles:      req.MediaFiles,
	}
	if req.StartDate != nil {
		c.StartDate = req.StartDate.Time
	}
	if req.EndDate != nil {
		c.EndDate = req.EndDate.Time
	}
	if c.Priority == "" {
		c.Priority = domain.PriorityMedium
	}
	if c.Demographics == nil {
		c.Demographics = domain.Attributes{}
	}
	if c.TargetLocations == nil {
		c.TargetLocations = []domain.GeoLocation{}
	}
	if c.MediaFiles == nil {
		c.MediaFiles = []string{}
	}

	if err := validateCampaign(*c); err != nil {
		return nil, err
	}

	if err := s.campaigns.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, c.ID)

	s.logger.Info("campaign created",
		slog.String("campaign_id", c.ID),
		slog.String("user_id", ownerID),
		slog.String("name", c.Name),
	)
	return c, nil
}

// Get returns an owned campaign. A cached entity is served only when it
// belongs to ownerID; otherwise the repository decides.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*domain.Campaign, error) {
	key := s.keys.Item(cacheKind, id)

	var cached domain.Campaign
	if s.cache.Get(ctx, key, &cached) && cached.UserID == ownerID {
		return &cached, nil
	}

	c, err := s.campaigns.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, c, min(s.ttl, ItemTTL))
	return c, nil
}

func (s *Service) List(ctx context.Context, ownerID string, filter domain.CampaignFilter, page, size int) (domain.Page[domain.Campaign], error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.Page[domain.Campaign]{}, &domain.ValidationError{
			Message: "invalid status filter",
			Details: []string{fmt.Sprintf("status: unknown value %q", filter.Status)},
		}
	}
	filter.Search = strings.TrimSpace(filter.Search)

	p := pagination.Normalize(page, size)
	key := s.keys.List(cacheKind, ownerID, p.Page, p.Size, string(filter.Status), filter.Search)

	var cached domain.Page[domain.Campaign]
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err := s.campaigns.List(ctx, ownerID, filter, p)
	if err != nil {
		return domain.Page[domain.Campaign]{}, err
	}
	s.cache.Set(ctx, key, result, s.ttl)
	return result, nil
}

// Update applies a partial update. The merged campaign must still satisfy
// every creation rule; an empty patch returns the campaign unchanged.
func (s *Service) Update(ctx context.Context, id, ownerID string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	current, err := s.campaigns.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if patch.Channel != nil {
		channel := strings.TrimSpace(*patch.Channel)
		patch.Channel = &channel
	}
	if err := validateCampaign(patch.Apply(*current)); err != nil {
		return nil, err
	}

	updated, err := s.campaigns.Update(ctx, id, ownerID, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, id)

	s.logger.Info("campaign updated", slog.String("campaign_id", id), slog.String("user_id", ownerID))
	return updated, nil
}

// UpdateStatus moves the campaign through its lifecycle. The store write is
// conditional on the status read here, so a concurrent change surfaces as
// domain.ErrConflict instead of being overwritten.
func (s *Service) UpdateStatus(ctx context.Context, id, ownerID string, requested domain.CampaignStatus) (*domain.Campaign, error) {
	if !requested.Valid() {
		return nil, &domain.ValidationError{
			Message: "invalid status",
			Details: []string{fmt.Sprintf("status: unknown value %q", requested)},
		}
	}

	current, err := s.campaigns.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	at, err := Transition(current.Status, requested, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.campaigns.UpdateStatus(ctx, id, ownerID, current.Status, requested, at)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, ownerID, id)

	s.logger.Info("campaign status changed",
		slog.String("campaign_id", id),
		slog.String("from", string(current.Status)),
		slog.String("to", string(requested)),
	)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.campaigns.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID, id)

	s.logger.Info("campaign deleted", slog.String("campaign_id", id), slog.String("user_id", ownerID))
	return nil
}

// Stats derives performance ratios from the stored counters. Ratios are
// percentages; a zero denominator yields 0.
func (s *Service) Stats(ctx context.Context, id, ownerID string) (*domain.CampaignStats, error) {
	c, err := s.campaigns.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	return &domain.CampaignStats{
		CampaignID:        c.ID,
		Views:             c.ViewsCount,
		Clicks:            c.ClicksCount,
		Conversions:       c.ConversionsCount,
		CTR:               round2(ratio(float64(c.ClicksCount), c.ViewsCount) * 100),
		ConversionRate:    round2(ratio(float64(c.ConversionsCount), c.ClicksCount) * 100),
		CostPerClick:      round2(ratio(c.Budget, c.ClicksCount)),
		CostPerConversion: round2(ratio(c.Budget, c.ConversionsCount)),
		TotalSpent:        c.Budget,
		LastUpdated:       s.now().UTC(),
	}, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID, id string) {
	s.cache.DeletePrefix(ctx, s.keys.OwnerPrefix(cacheKind, ownerID))
	if id != "" {
		s.cache.Delete(ctx, s.keys.Item(cacheKind, id))
	}
}

func validateCampaign(c domain.Campaign) error {
	var details []string

	if n := utf8.RuneCountInString(c.Name); n < 1 || n > 200 {
		details = append(details, "name: must be between 1 and 200 characters")
	}
	if utf8.RuneCountInString(c.Description) > 1000 {
		details = append(details, "description: must be at most 1000 characters")
	}
	if !(c.Budget > 0) {
		details = append(details, "budget: must be greater than 0")
	}
	if n := utf8.RuneCountInString(c.Channel); n < 1 || n > 100 {
		details = append(details, "channel: must be between 1 and 100 characters")
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		details = append(details, "start_date and end_date are required")
	} else if !c.EndDate.After(c.StartDate) {
		details = append(details, "end_date: must be after start_date")
	}
	if !c.Priority.Valid() {
		details = append(details, fmt.Sprintf("priority: unknown value %q", c.Priority))
	}

	if err := geo.ValidateAll(c.TargetLocations); err != nil {
		if verr, ok := err.(*domain.ValidationError); ok {
			details = append(details, verr.Details...)
		}
	}

	if len(details) == 0 {
		return nil
	}
	return &domain.ValidationError{Message: "invalid campaign", Details: details}
}

func ratio(num float64, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return num / float64(den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
