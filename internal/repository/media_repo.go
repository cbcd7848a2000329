package repository

import (
	"context"
	"errors"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"

	"gorm.io/gorm"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

type mediaModel struct {
	ID               string            `gorm:"column:id;primaryKey;size:24"`
	UserID           string            `gorm:"column:user_id;size:24;index:idx_media_owner_uploaded,priority:1"`
	CampaignID       string            `gorm:"column:campaign_id;size:24;index"`
	Filename         string            `gorm:"column:filename;size:255;uniqueIndex"`
	OriginalFilename string            `gorm:"column:original_filename;size:255"`
	FileType         string            `gorm:"column:file_type;size:20;index"`
	MimeType         string            `gorm:"column:mime_type;size:100"`
	Size             int64             `gorm:"column:size"`
	StorageKey       string            `gorm:"column:storage_key;size:512"`
	URL              string            `gorm:"column:url;size:1024"`
	ThumbnailURL     *string           `gorm:"column:thumbnail_url;size:1024"`
	Status           string            `gorm:"column:status;size:20"`
	Metadata         domain.Attributes `gorm:"column:metadata;type:text;serializer:json"`
	ErrorMessage     *string           `gorm:"column:error_message"`
	UploadDate       time.Time         `gorm:"column:upload_date;index:idx_media_owner_uploaded,priority:2"`
	ProcessedDate    *time.Time        `gorm:"column:processed_date"`
}

func (mediaModel) TableName() string { return "media_files" }

func toDomainMedia(m mediaModel) *domain.MediaFile {
	f := &domain.MediaFile{
		ID:               m.ID,
		UserID:           m.UserID,
		CampaignID:       m.CampaignID,
		Filename:         m.Filename,
		OriginalFilename: m.OriginalFilename,
		FileType:         domain.MediaType(m.FileType),
		MimeType:         m.MimeType,
		Size:             m.Size,
		StorageKey:       m.StorageKey,
		URL:              m.URL,
		Status:           domain.MediaStatus(m.Status),
		Metadata:         m.Metadata,
		UploadDate:       m.UploadDate,
		ProcessedDate:    m.ProcessedDate,
	}
	if m.ThumbnailURL != nil {
		f.ThumbnailURL = *m.ThumbnailURL
	}
	if m.ErrorMessage != nil {
		f.ErrorMessage = *m.ErrorMessage
	}
	return f
}

func toMediaModel(f *domain.MediaFile) mediaModel {
	m := mediaModel{
		ID:               f.ID,
		UserID:           f.UserID,
		CampaignID:       f.CampaignID,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FileType:         string(f.FileType),
		MimeType:         f.MimeType,
		Size:             f.Size,
		StorageKey:       f.StorageKey,
		URL:              f.URL,
		Status:           string(f.Status),
		Metadata:         f.Metadata,
		UploadDate:       f.UploadDate,
		ProcessedDate:    f.ProcessedDate,
	}
	if f.ThumbnailURL != "" {
		v := f.ThumbnailURL
		m.ThumbnailURL = &v
	}
	if f.ErrorMessage != "" {
		v := f.ErrorMessage
		m.ErrorMessage = &v
	}
	return m
}

// Create inserts the record. The id is assigned by the caller so the
// storage key can be derived before the insert.
func (r *MediaRepository) Create(ctx context.Context, f *domain.MediaFile) error {
	if f.ID == "" {
		f.ID = NewID()
	}
	if f.UploadDate.IsZero() {
		f.UploadDate = time.Now().UTC()
	}

	m := toMediaModel(f)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return dbError("create media file", err)
	}
	return nil
}

func (r *MediaRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.MediaFile, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("MediaFile", id)
	}

	var m mediaModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundf("MediaFile", id)
		}
		return nil, dbError("get media file", err)
	}
	return toDomainMedia(m), nil
}

func (r *MediaRepository) List(ctx context.Context, ownerID string, filter domain.MediaFilter, p pagination.Params) (domain.Page[domain.MediaFile], error) {
	q := r.db.WithContext(ctx).Model(&mediaModel{}).Where("user_id = ?", ownerID)
	if filter.CampaignID != "" {
		q = q.Where("campaign_id = ?", filter.CampaignID)
	}
	if filter.FileType != "" {
		q = q.Where("file_type = ?", string(filter.FileType))
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return domain.Page[domain.MediaFile]{}, dbError("count media files", err)
	}

	var rows []mediaModel
	err := q.Order("upload_date DESC").Order("id DESC").
		Offset(p.Offset()).Limit(p.Size).
		Find(&rows).Error
	if err != nil {
		return domain.Page[domain.MediaFile]{}, dbError("list media files", err)
	}

	items := make([]domain.MediaFile, 0, len(rows))
	for _, m := range rows {
		items = append(items, *toDomainMedia(m))
	}

	return domain.Page[domain.MediaFile]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: pagination.Pages(total, p.Size),
	}, nil
}

func (r *MediaRepository) Update(ctx context.Context, id, ownerID string, patch domain.MediaPatch) (*domain.MediaFile, error) {
	if !ValidID(id) {
		return nil, domain.NotFoundf("MediaFile", id)
	}

	updates := map[string]any{}
	if patch.Filename != nil {
		updates["original_filename"] = *patch.Filename
	}
	if patch.Metadata != nil {
		updates["metadata"] = jsonValue{*patch.Metadata}
	}
	if len(updates) == 0 {
		return r.GetOwned(ctx, id, ownerID)
	}

	res := r.db.WithContext(ctx).Model(&mediaModel{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, dbError("update media file", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NotFoundf("MediaFile", id)
	}
	return r.GetOwned(ctx, id, ownerID)
}

// SetStatus records a processing step. processedAt and errMsg are written
// as given, so passing nil and "" clears them.
func (r *MediaRepository) SetStatus(ctx context.Context, id string, status domain.MediaStatus, processedAt *time.Time, errMsg string) error {
	if !ValidID(id) {
		return domain.NotFoundf("MediaFile", id)
	}

	var msg *string
	if errMsg != "" {
		msg = &errMsg
	}
	res := r.db.WithContext(ctx).Model(&mediaModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         string(status),
			"processed_date": processedAt,
			"error_message":  msg,
		})
	if res.Error != nil {
		return dbError("update media status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("MediaFile", id)
	}
	return nil
}

func (r *MediaRepository) Delete(ctx context.Context, id, ownerID string) error {
	if !ValidID(id) {
		return domain.NotFoundf("MediaFile", id)
	}
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&mediaModel{})
	if res.Error != nil {
		return dbError("delete media file", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundf("MediaFile", id)
	}
	return nil
}
