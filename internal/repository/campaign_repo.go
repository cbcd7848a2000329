package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

type campaignModel struct {
	ID               string               `gorm:"column:id;primaryKey;size:24"`
	UserID           string               `gorm:"column:user_id;size:24;index:idx_campaigns_owner_created,priority:1;index:idx_campaigns_owner_status,priority:1"`
	Name             string               `gorm:"column:name;size:200"`
	Description      string               `gorm:"column:description;size:1000"`
	Budget           float64              `gorm:"column:budget"`
	Demographics     domain.Attributes    `gorm:"column:demographics;type:text;serializer:json"`
	Channel          string               `gorm:"column:channel;size:100"`
	StartDate        time.Time            `gorm:"column:start_date"`
	EndDate          time.Time            `gorm:"column:end_date"`
	Priority         string               `gorm:"column:priority;size:20"`
	Status           string               `gorm:"column:status;size:20;index:idx_campaigns_owner_status,priority:2"`
	TargetLocations  []domain.GeoLocation `gorm:"column:target_locations;type:text;serializer:json"`
	MediaFiles       []string             `gorm:"column:media_files;type:text;serializer:json"`
	ViewsCount       int64                `gorm:"column:views_count"`
	ClicksCount      int64                `gorm:"column:clicks_count"`
	ConversionsCount int64                `gorm:"column:conversions_count"`
	CreatedAt        time.Time            `gorm:"column:created_at;index:idx_campaigns_owner_created,priority:2"`
	UpdatedAt        time.Time            `gorm:"column:updated_at"`
}

func (campaignModel) TableName() string { return "campaigns" }

func toDomainCampaign(m campaignModel) *domain.Campaign {
	c := &domain.Campaign{
		ID:               m.ID,
		UserID:           m.UserID,
		Name:             m.Name,
		Description:      m.Description,
		Budget:           m.Budget,
		Demographics:     m.Demographics,
		Channel:          m.Channel,
		StartDate:        m.StartDate,
		EndDate:          m.EndDate,
		Priority:         domain.CampaignPriority(m.Priority),
		Status:           domain.CampaignStatus(m.Status),
		TargetLocations:  m.TargetLocations,
		MediaFiles:       m.MediaFiles,
		ViewsCount:       m.ViewsCount,
		ClicksCount:      m.ClicksCount,
		ConversionsCount: m.ConversionsCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
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
	return c
}

func toCampaignModel(c *domain.Campaign) campaignModel {
	return campaignModel{
		ID:               c.ID,
		UserID:           c.UserID,
		Name:             c.Name,
		Description:      c.Description,
		Budget:           c.Budget,
		Demographics:     c.Demographics,
		Channel:          c.Channel,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		Priority:         string(c.Priority),
		Status:           string(c.Status),
		TargetLocations:  c.TargetLocations,
		MediaFiles:       c.MediaFiles,
		ViewsCount:       c.ViewsCount,
		ClicksCount:      c.ClicksCount,
		ConversionsCount: c.ConversionsCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// Create persists a new campaign owned by c.UserID. The id, timestamps and
// counters are assigned here.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	now := time.Now().UTC()
	c.ID = NewID()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.ViewsCount, c.ClicksCount, c.ConversionsCount = 0, 0, 0

	m := toCampaignModel(c)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return dbError("create campaign", err)
	}
	return nil
}

// GetOwned returns the campaign only when ownerID owns it. Absent, foreign
// and malformed ids all yield the same not-found error.
func (r *CampaignRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Campaign, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("Campaign", id)
	}

	var m campaignModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("Campaign", id)
		}
		return nil, dbError("get campaign", err)
	}
	return toDomainCampaign(m), nil
}

func (r *CampaignRepository) List(ctx context.Context, ownerID string, filter domain.CampaignFilter, p pagination.Params) (domain.Page[domain.Campaign], error) {
	q := r.db.WithContext(ctx).Model(&campaignModel{}).Where("user_id = ?", ownerID)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return domain.Page[domain.Campaign]{}, dbError("count campaigns", err)
	}

	var rows []campaignModel
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&rows).Error
	if err != nil {
		return domain.Page[domain.Campaign]{}, dbError("list campaigns", err)
	}

	items := make([]domain.Campaign, 0, len(rows))
	for _, m := range rows {
		items = append(items, *toDomainCampaign(m))
	}

	return domain.Page[domain.Campaign]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: pagination.Pages(total, p.Size),
	}, nil
}

// Update writes only the fields present in the patch, scoped by id and owner.
func (r *CampaignRepository) Update(ctx context.Context, id, ownerID string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("Campaign", id)
	}

	updates := campaignUpdates(patch)
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, dbError("update campaign", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFoundf("Campaign", id)
	}
	return r.GetOwned(ctx, id, ownerID)
}

// UpdateStatus moves the campaign from one status to another only if its
// stored status still equals from. A lost race reports domain.ErrConflict.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id, ownerID string, from, to domain.CampaignStatus, at time.Time) (*domain.Campaign, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("Campaign", id)
	}

	res := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ? AND user_id = ? AND status = ?", id, ownerID, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": at})
	if res.Error != nil {
		return nil, dbError("update campaign status", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetOwned(ctx, id, ownerID); err != nil {
			return nil, err
		}
		return nil, errConcurrentStatusChange
	}
	return r.GetOwned(ctx, id, ownerID)
}

func (r *CampaignRepository) Delete(ctx context.Context, id, ownerID string) error {
	if !ValidID(id) {
		return domain.NotFoundf("Campaign", id)
	}
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&campaignModel{})
	if res.Error != nil {
		return dbError("delete campaign", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("Campaign", id)
	}
	return nil
}

// Exists reports whether ownerID owns a campaign with the given id.
func (r *CampaignRepository) Exists(ctx context.Context, id, ownerID string) (bool, error) {
	if !ValidID(id) {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&campaignModel{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Count(&count).Error
	if err != nil {
		return false, dbError("count campaigns", err)
	}
	return count > 0, nil
}

func campaignUpdates(p domain.CampaignPatch) map[string]any {
	updates := map[string]any{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Budget != nil {
		updates["budget"] = *p.Budget
	}
	if p.Demographics != nil {
		updates["demographics"] = jsonValue{*p.Demographics}
	}
	if p.Channel != nil {
		updates["channel"] = *p.Channel
	}
	if p.StartDate != nil {
		updates["start_date"] = *p.StartDate
	}
	if p.EndDate != nil {
		updates["end_date"] = *p.EndDate
	}
	if p.Priority != nil {
		updates["priority"] = string(*p.Priority)
	}
	if p.TargetLocations != nil {
		updates["target_locations"] = jsonValue{*p.TargetLocations}
	}
	if p.MediaFiles != nil {
		updates["media_files"] = jsonValue{*p.MediaFiles}
	}
	return updates
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
