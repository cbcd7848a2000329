package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campaignhub/internal/cache"
	"campaignhub/internal/database"
	"campaignhub/internal/domain"
	"campaignhub/internal/pkg/pagination"
	"campaignhub/internal/repository"
)

const (
	userA = "65a000000000000000000001"
	userB = "65a000000000000000000002"
)

func ts(t *testing.T, s string) *Timestamp {
	t.Helper()
	var v Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"`+s+`"`), &v))
	return &v
}

func newRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, nil), mr
}

// newStackService wires the service to sqlite and miniredis.
func newStackService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	rc, mr := newRedis(t)
	svc := NewService(repository.NewCampaignRepository(db), rc, cache.NewKeys("test"), cache.DefaultListTTL, nil)
	return svc, mr
}

func springSale(t *testing.T) CreateCampaignRequest {
	return CreateCampaignRequest{
		Name:      "Spring Sale",
		Budget:    1000,
		Channel:   "social",
		StartDate: ts(t, "2025-01-01"),
		EndDate:   ts(t, "2025-01-31"),
	}
}

func TestService_SpringSaleLifecycle(t *testing.T) {
	svc, _ := newStackService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, userA, springSale(t))
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignDraft, c.Status)
	assert.Equal(t, domain.PriorityMedium, c.Priority)
	assert.Len(t, c.ID, 24)

	active, err := svc.UpdateStatus(ctx, c.ID, userA, domain.CampaignActive)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignActive, active.Status)

	_, err = svc.UpdateStatus(ctx, c.ID, userA, domain.CampaignDraft)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.Get(ctx, c.ID, userA)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignActive, got.Status)
}

func TestService_OtherOwnerGetsNotFound(t *testing.T) {
	svc, _ := newStackService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, userA, springSale(t))
	require.NoError(t, err)

	// warm the entity cache as the owner
	_, err = svc.Get(ctx, c.ID, userA)
	require.NoError(t, err)

	_, err = svc.Get(ctx, c.ID, userB)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, errors.Is(err, domain.ErrForbidden))

	_, err = svc.UpdateStatus(ctx, c.ID, userB, domain.CampaignActive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID, userB), domain.ErrNotFound)
}

func TestService_GetCachesItemBriefly(t *testing.T) {
	svc, mr := newStackService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, userA, springSale(t))
	require.NoError(t, err)
	_, err = svc.Get(ctx, c.ID, userA)
	require.NoError(t, err)

	key := cache.NewKeys("test").Item(cacheKind, c.ID)
	require.True(t, mr.Exists(key))
	ttl := mr.TTL(key)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, ItemTTL)

	mr.FastForward(ItemTTL + time.Second)
	assert.False(t, mr.Exists(key))
}

func TestService_CreateRejectsEndBeforeStart(t *testing.T) {
	svc, _ := newStackService(t)

	req := springSale(t)
	req.EndDate = req.StartDate

	_, err := svc.Create(context.Background(), userA, req)
	require.ErrorIs(t, err, domain.ErrValidation)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Details, "end_date: must be after start_date")
}

func TestService_CreateRejectsInvalidTargetLocation(t *testing.T) {
	svc, _ := newStackService(t)

	req := springSale(t)
	req.TargetLocations = []domain.GeoLocation{
		{Type: domain.LocationPoint, Coordinates: []float64{-3.70, 40.41}},
		{Type: domain.LocationPoint, Coordinates: []float64{200, 40}},
	}

	_, err := svc.Create(context.Background(), userA, req)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Details)
	assert.True(t, strings.HasPrefix(verr.Details[0], "target_locations[1]"))
}

func TestService_ListPagesAndCacheInvalidation(t *testing.T) {
	svc, mr := newStackService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		req := springSale(t)
		req.Name = fmt.Sprintf("Campaign %02d", i)
		_, err := svc.Create(ctx, userA, req)
		require.NoError(t, err)
	}

	page2, err := svc.List(ctx, userA, domain.CampaignFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Len(t, page2.Items, 5)
	assert.Equal(t, int64(15), page2.Total)
	assert.Equal(t, 2, page2.Pages)
	assert.True(t, mr.Exists("test:campaigns:"+userA+":2:10::"))

	_, err = svc.Create(ctx, userA, springSale(t))
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:campaigns:"+userA+":2:10::"))

	page2, err = svc.List(ctx, userA, domain.CampaignFilter{}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(16), page2.Total)
	assert.Len(t, page2.Items, 6)

	other, err := svc.List(ctx, userB, domain.CampaignFilter{}, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestService_ListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newStackService(t)
	_, err := svc.List(context.Background(), userA, domain.CampaignFilter{Status: "archived"}, 1, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_UpdatePartial(t *testing.T) {
	svc, _ := newStackService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, userA, springSale(t))
	require.NoError(t, err)

	budget := 2500.0
	updated, err := svc.Update(ctx, c.ID, userA, domain.CampaignPatch{Budget: &budget})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, updated.Budget)
	assert.Equal(t, "Spring Sale", updated.Name)
	assert.Equal(t, c.EndDate.Unix(), updated.EndDate.Unix())

	early := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(ctx, c.ID, userA, domain.CampaignPatch{EndDate: &early})
	assert.ErrorIs(t, err, domain.ErrValidation)

	blank := "   "
	_, err = svc.Update(ctx, c.ID, userA, domain.CampaignPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Stats(t *testing.T) {
	repo := new(MockCampaignRepository)
	svc := NewService(repo, nil, cache.NewKeys("test"), 0, nil)
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.On("GetOwned", mock.Anything, "c1", userA).Return(&domain.Campaign{
		ID: "c1", UserID: userA, Budget: 1000,
		ViewsCount: 3000, ClicksCount: 300, ConversionsCount: 7,
	}, nil)

	stats, err := svc.Stats(context.Background(), "c1", userA)
	require.NoError(t, err)
	assert.Equal(t, 10.0, stats.CTR)
	assert.Equal(t, 2.33, stats.ConversionRate)
	assert.Equal(t, 3.33, stats.CostPerClick)
	assert.Equal(t, 142.86, stats.CostPerConversion)
	assert.Equal(t, 1000.0, stats.TotalSpent)
	assert.Equal(t, now, stats.LastUpdated)
}

func TestService_StatsZeroDenominators(t *testing.T) {
	repo := new(MockCampaignRepository)
	svc := NewService(repo, nil, cache.NewKeys("test"), 0, nil)
	repo.On("GetOwned", mock.Anything, "c1", userA).Return(&domain.Campaign{ID: "c1", UserID: userA, Budget: 500}, nil)

	stats, err := svc.Stats(context.Background(), "c1", userA)
	require.NoError(t, err)
	assert.Zero(t, stats.CTR)
	assert.Zero(t, stats.ConversionRate)
	assert.Zero(t, stats.CostPerClick)
	assert.Zero(t, stats.CostPerConversion)
}

func TestService_ListServesFromCache(t *testing.T) {
	repo := new(MockCampaignRepository)
	rc, _ := newRedis(t)
	svc := NewService(repo, rc, cache.NewKeys("test"), time.Minute, nil)

	page := domain.Page[domain.Campaign]{
		Items: []domain.Campaign{{ID: "c1", UserID: userA, Name: "Cached"}},
		Total: 1, Page: 1, Size: 10, Pages: 1,
	}
	repo.On("List", mock.Anything, userA, domain.CampaignFilter{}, pagination.Params{Page: 1, Size: 10}).
		Return(page, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.List(context.Background(), userA, domain.CampaignFilter{}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "Cached", got.Items[0].Name)
	}
	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestService_UpdateStatusLostRace(t *testing.T) {
	repo := new(MockCampaignRepository)
	svc := NewService(repo, nil, cache.NewKeys("test"), 0, nil)

	repo.On("GetOwned", mock.Anything, "c1", userA).
		Return(&domain.Campaign{ID: "c1", UserID: userA, Status: domain.CampaignActive}, nil)
	repo.On("UpdateStatus", mock.Anything, "c1", userA, domain.CampaignActive, domain.CampaignPaused, mock.AnythingOfType("time.Time")).
		Return(nil, fmt.Errorf("%w: status changed concurrently", domain.ErrConflict))

	_, err := svc.UpdateStatus(context.Background(), "c1", userA, domain.CampaignPaused)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_UpdateStatusUnknownValue(t *testing.T) {
	repo := new(MockCampaignRepository)
	svc := NewService(repo, nil, cache.NewKeys("test"), 0, nil)

	_, err := svc.UpdateStatus(context.Background(), "c1", userA, "archived")
	assert.ErrorIs(t, err, domain.ErrValidation)
	repo.AssertNotCalled(t, "GetOwned", mock.Anything, mock.Anything, mock.Anything)
}

func TestTimestamp_AcceptsDatesAndRFC3339(t *testing.T) {
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ts(t, "2025-01-01").Time)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC), ts(t, "2025-01-01T10:30:00+01:00").Time)

	var v Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2025"`), &v))
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetOwned(ctx context.Context, id, ownerID string) (*domain.Campaign, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) List(ctx context.Context, ownerID string, filter domain.CampaignFilter, p pagination.Params) (domain.Page[domain.Campaign], error) {
	args := m.Called(ctx, ownerID, filter, p)
	return args.Get(0).(domain.Page[domain.Campaign]), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, id, ownerID string, patch domain.CampaignPatch) (*domain.Campaign, error) {
	args := m.Called(ctx, id, ownerID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) UpdateStatus(ctx context.Context, id, ownerID string, from, to domain.CampaignStatus, at time.Time) (*domain.Campaign, error) {
	args := m.Called(ctx, id, ownerID, from, to, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}
