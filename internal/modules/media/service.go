package media

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"campaignhub/internal/cache"
	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"
	"campaignhub/internal/repository"
	"campaignhub/internal/storage"
)

const (
	cacheKind = "media"

	DefaultMaxFileSize int64 = 50 << 20

	cleanupTimeout = 10 * time.Second
)

var allowedTypes = map[domain.MediaType][]string{
	domain.MediaImage:    {"image/jpeg", "image/png", "image/gif", "image/webp"},
	domain.MediaVideo:    {"video/mp4", "video/webm", "video/quicktime"},
	domain.MediaAudio:    {"audio/mpeg", "audio/wav", "audio/ogg", "audio/mp4", "audio/webm", "audio/aac"},
	domain.MediaDocument: {"application/pdf", "application/msword", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "text/plain", "text/csv"},
}

var folders = map[domain.MediaType]string{
	domain.MediaImage:    "images",
	domain.MediaVideo:    "videos",
	domain.MediaAudio:    "audio",
	domain.MediaDocument: "documents",
}

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

type Config struct {
	MaxFileSize int64
	ListTTL     time.Duration
	Processor   Processor
}

type Service struct {
	media     MediaRepository
	campaigns CampaignChecker
	store     storage.Storage
	cache     cache.Cache
	keys      cache.Keys
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(media MediaRepository, campaigns CampaignChecker, store storage.Storage, c cache.Cache, keys cache.Keys, cfg Config, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = cache.DefaultListTTL
	}
	if cfg.Processor == nil {
		cfg.Processor = PassThrough{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		media:     media,
		campaigns: campaigns,
		store:     store,
		cache:     c,
		keys:      keys,
		cfg:       cfg,
		logger:    logger.With(slog.String("module", "media")),
		now:       time.Now,
	}
}

// MaxFileSize is the upload limit in bytes.
func (s *Service) MaxFileSize() int64 { return s.cfg.MaxFileSize }

// AllowedTypes lists the accepted MIME types for t.
func AllowedTypes(t domain.MediaType) []string {
	return append([]string(nil), allowedTypes[t]...)
}

// Upload validates the file, stores it and records it. Every check runs
// before the first byte is written to storage.
func (s *Service) Upload(ctx context.Context, ownerID string, in Upload) (*domain.MediaFile, error) {
	contentType, err := s.checkUpload(in)
	if err != nil {
		return nil, err
	}

	if in.CampaignID == "" {
		return nil, &domain.ValidationError{Message: "campaign_id is required"}
	}
	owned, err := s.campaigns.Exists(ctx, in.CampaignID, ownerID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, domain.NotFoundf("Campaign", in.CampaignID)
	}

	original := filepath.Base(strings.ReplaceAll(in.Filename, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(original))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	stored := uuid.NewString() + ext
	key := fmt.Sprintf("campaigns/%s/%s/%s", in.CampaignID, folders[in.FileType], stored)

	url, err := s.store.Put(ctx, key, in.Body, in.Size, contentType)
	if err != nil {
		return nil, err
	}

	f := &domain.MediaFile{
		ID:               repository.NewID(),
		UserID:           ownerID,
		CampaignID:       in.CampaignID,
		Filename:         stored,
		OriginalFilename: original,
		FileType:         in.FileType,
		MimeType:         contentType,
		Size:             in.Size,
		StorageKey:       key,
		URL:              url,
		Status:           domain.MediaUploading,
		Metadata:         domain.Attributes{},
		UploadDate:       s.now().UTC(),
	}
	if err := s.media.Create(ctx, f); err != nil {
		s.removeObject(ctx, key)
		return nil, err
	}

	s.process(ctx, f)
	s.invalidate(ctx, ownerID, f.ID)

	s.logger.Info("file uploaded",
		slog.String("file_id", f.ID),
		slog.String("filename", stored),
		slog.String("user_id", ownerID),
		slog.String("campaign_id", in.CampaignID),
		slog.Int64("size", in.Size),
	)
	return f, nil
}

func (s *Service) checkUpload(in Upload) (string, error) {
	if !in.FileType.Valid() {
		return "", fmt.Errorf("%w: unknown file type %q", domain.ErrFileUpload, in.FileType)
	}
	if in.Size > s.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: File size exceeds maximum allowed size of %dMB", domain.ErrFileTooLarge, s.cfg.MaxFileSize>>20)
	}
	if in.Size <= 0 {
		return "", fmt.Errorf("%w: file is empty", domain.ErrFileUpload)
	}

	contentType, _, err := mime.ParseMediaType(in.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: missing or malformed content type", domain.ErrFileUpload)
	}
	for _, allowed := range allowedTypes[in.FileType] {
		if contentType == allowed {
			return contentType, nil
		}
	}
	return "", fmt.Errorf("%w: Invalid %s type. Allowed types: %s",
		domain.ErrFileUpload, in.FileType, strings.Join(allowedTypes[in.FileType], ", "))
}

// process runs the processor and records the outcome on f. Failures end in
// the error status and are not returned.
func (s *Service) process(ctx context.Context, f *domain.MediaFile) {
	if err := s.media.SetStatus(ctx, f.ID, domain.MediaProcessing, nil, ""); err != nil {
		s.logger.Error("mark processing failed", slog.String("file_id", f.ID), slog.String("error", err.Error()))
		return
	}
	f.Status, f.ErrorMessage, f.ProcessedDate = domain.MediaProcessing, "", nil

	if perr := s.cfg.Processor.Process(ctx, f); perr != nil {
		s.logger.Error("file processing failed", slog.String("file_id", f.ID), slog.String("error", perr.Error()))
		if err := s.media.SetStatus(ctx, f.ID, domain.MediaError, nil, perr.Error()); err != nil {
			s.logger.Error("mark error failed", slog.String("file_id", f.ID), slog.String("error", err.Error()))
			return
		}
		f.Status, f.ErrorMessage = domain.MediaError, perr.Error()
		return
	}

	done := s.now().UTC()
	if err := s.media.SetStatus(ctx, f.ID, domain.MediaReady, &done, ""); err != nil {
		s.logger.Error("mark ready failed", slog.String("file_id", f.ID), slog.String("error", err.Error()))
		return
	}
	f.Status, f.ProcessedDate = domain.MediaReady, &done
	s.logger.Info("file processing completed", slog.String("file_id", f.ID))
}

// removeObject deletes an orphaned object even when ctx is already cancelled.
func (s *Service) removeObject(ctx context.Context, key string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.store.Delete(cleanupCtx, key); err != nil {
		s.logger.Error("orphaned object not removed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (*domain.MediaFile, error) {
	key := s.keys.Item(cacheKind, id)

	var cached domain.MediaFile
	if s.cache.Get(ctx, key, &cached) && cached.UserID == ownerID {
		return &cached, nil
	}

	f, err := s.media.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, f, s.cfg.ListTTL)
	return f, nil
}

func (s *Service) List(ctx context.Context, ownerID string, filter domain.MediaFilter, page, size int) (domain.Page[domain.MediaFile], error) {
	if filter.FileType != "" && !filter.FileType.Valid() {
		return domain.Page[domain.MediaFile]{}, &domain.ValidationError{
			Message: "invalid file type filter",
			Details: []string{fmt.Sprintf("file_type: unknown value %q", filter.FileType)},
		}
	}

	p := pagination.Normalize(page, size)
	key := s.keys.List(cacheKind, ownerID, p.Page, p.Size, filter.CampaignID, string(filter.FileType))

	var cached domain.Page[domain.MediaFile]
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	result, err := s.media.List(ctx, ownerID, filter, p)
	if err != nil {
		return domain.Page[domain.MediaFile]{}, err
	}
	s.cache.Set(ctx, key, result, s.cfg.ListTTL)
	return result, nil
}

func (s *Service) Update(ctx context.Context, id, ownerID string, patch domain.MediaPatch) (*domain.MediaFile, error) {
	if patch.Filename != nil {
		name := strings.TrimSpace(*patch.Filename)
		if name == "" {
			return nil, &domain.ValidationError{Message: "filename must not be empty"}
		}
		patch.Filename = &name
	}

	f, err := s.media.Update(ctx, id, ownerID, patch)
	if err != nil {
		return nil, err
	}
	if !patch.Empty() {
		s.invalidate(ctx, ownerID, id)
	}
	return f, nil
}

// Delete removes the stored object and then the record. A storage failure
// is logged; the record is removed regardless.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	f, err := s.media.GetOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if f.StorageKey != "" {
		if err := s.store.Delete(ctx, f.StorageKey); err != nil {
			s.logger.Error("delete object failed", slog.String("file_id", id), slog.String("key", f.StorageKey), slog.String("error", err.Error()))
		}
	}

	if err := s.media.Delete(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(ctx, ownerID, id)

	s.logger.Info("file deleted", slog.String("file_id", id), slog.String("user_id", ownerID))
	return nil
}

func (s *Service) Status(ctx context.Context, id, ownerID string) (*ProcessingStatus, error) {
	f, err := s.media.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return &ProcessingStatus{
		FileID:   f.ID,
		Status:   f.Status,
		Progress: f.Status.Progress(),
		Message:  f.ErrorMessage,
	}, nil
}

// Reprocess runs the pipeline again and reports the resulting status.
func (s *Service) Reprocess(ctx context.Context, id, ownerID string) (*ProcessingStatus, error) {
	f, err := s.media.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	s.process(ctx, f)
	s.invalidate(ctx, ownerID, id)

	msg := "Reprocessing completed"
	if f.Status == domain.MediaError {
		msg = f.ErrorMessage
	}
	return &ProcessingStatus{
		FileID:   f.ID,
		Status:   f.Status,
		Progress: f.Status.Progress(),
		Message:  msg,
	}, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID, id string) {
	s.cache.DeletePrefix(ctx, s.keys.OwnerPrefix(cacheKind, ownerID))
	if id != "" {
		s.cache.Delete(ctx, s.keys.Item(cacheKind, id))
	}
}
