package services

import (
	"context"
	"testing"
	"time"

	"kiliheights.com/models"
	"kiliheights.com/pkg/cache"
	"kiliheights.com/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var selectorNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func departure(id uint, routeID uint, arrivalInDays int, opts ...func(*models.GroupDeparture)) models.GroupDeparture {
	d := models.GroupDeparture{
		RouteID:         routeID,
		ArrivalDate:     selectorNow.AddDate(0, 0, arrivalInDays),
		Status:          models.DepartureStatusOpen,
		MinParticipants: 2,
		MaxParticipants: 12,
	}
	d.ID = id
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func withStatus(s models.DepartureStatus) func(*models.GroupDeparture) {
	return func(d *models.GroupDeparture) { d.Status = s }
}

func withBooked(n int) func(*models.GroupDeparture) {
	return func(d *models.GroupDeparture) { d.BookedSpots = n }
}

func manuallyFeatured(d *models.GroupDeparture) { d.IsManuallyFeatured = true }

func excludedFromRotation(d *models.GroupDeparture) { d.ExcludeFromRotation = true }

func fullMoon(d *models.GroupDeparture) { d.IsFullMoon = true }

func defaultConfig() models.RotationConfig {
	cfg := models.DefaultRotationConfig()
	cfg.Enabled = true
	return cfg
}

func TestSelectFeaturedRespectsCap(t *testing.T) {
	var candidates []models.GroupDeparture
	for i := 1; i <= 20; i++ {
		// Spread across enough routes that the per-route limit never bites.
		candidates = append(candidates, departure(uint(i), uint(i), 20+i))
	}

	sel := SelectFeatured(candidates, defaultConfig(), selectorNow)

	assert.Len(t, sel.Featured, models.DefaultMaxFeatured)
	assert.Equal(t, 0, sel.ManualCount)
}

func TestSelectFeaturedManualPinsAlwaysIncluded(t *testing.T) {
	candidates := []models.GroupDeparture{
		departure(1, 1, 30),
		departure(2, 2, 40, manuallyFeatured),
		departure(3, 3, 50, manuallyFeatured, excludedFromRotation),
		departure(4, 4, 60, manuallyFeatured, withStatus(models.DepartureStatusDraft)),
	}

	sel := SelectFeatured(candidates, defaultConfig(), selectorNow)

	ids := sel.IDs()
	assert.Contains(t, ids, uint(2))
	// A manual pin beats the exclusion flag and the bookable-status filter.
	assert.Contains(t, ids, uint(3))
	assert.Contains(t, ids, uint(4))
	assert.Equal(t, 3, sel.ManualCount)
}

func TestSelectFeaturedDisabledKeepsOnlyManualPins(t *testing.T) {
	candidates := []models.GroupDeparture{
		departure(1, 1, 30),
		departure(2, 2, 40, manuallyFeatured),
	}
	cfg := defaultConfig()
	cfg.Enabled = false

	sel := SelectFeatured(candidates, cfg, selectorNow)

	assert.Equal(t, []uint{2}, sel.IDs())
	assert.Equal(t, 1, sel.ManualCount)
}

func TestSelectFeaturedExcludesUnbookableAndExcluded(t *testing.T) {
	candidates := []models.GroupDeparture{
		departure(1, 1, 30),
		departure(2, 2, 31, withStatus(models.DepartureStatusDraft)),
		departure(3, 3, 32, withStatus(models.DepartureStatusCancelled)),
		departure(4, 4, 33, withStatus(models.DepartureStatusFull)),
		departure(5, 5, 34, excludedFromRotation),
		departure(6, 6, 35, withStatus(models.DepartureStatusLimited)),
		departure(7, 7, 36, withStatus(models.DepartureStatusGuaranteed)),
	}

	sel := SelectFeatured(candidates, defaultConfig(), selectorNow)

	assert.ElementsMatch(t, []uint{1, 6, 7}, sel.IDs())
}

func TestSelectFeaturedSkipWindow(t *testing.T) {
	cfg := defaultConfig()
	cfg.SkipWithinDays = 14

	candidates := []models.GroupDeparture{
		departure(1, 1, 5),  // inside the window, too close to sell
		departure(2, 2, 13), // still inside
		departure(3, 3, 14), // exactly on the cutoff stays in
		departure(4, 4, 40),
	}

	sel := SelectFeatured(candidates, cfg, selectorNow)

	assert.Equal(t, []uint{3, 4}, sel.IDs())
}

func TestSelectFeaturedFullMoonPriority(t *testing.T) {
	cfg := defaultConfig()
	cfg.PrioritizeFullMoon = true

	candidates := []models.GroupDeparture{
		departure(1, 1, 20),
		departure(2, 2, 60, fullMoon),
		departure(3, 3, 30),
	}

	sel := SelectFeatured(candidates, cfg, selectorNow)

	// The full moon departure leads even though it arrives last.
	assert.Equal(t, []uint{2, 1, 3}, sel.IDs())
}

func TestSelectFeaturedFullMoonOffKeepsArrivalOrder(t *testing.T) {
	cfg := defaultConfig()
	cfg.PrioritizeFullMoon = false

	candidates := []models.GroupDeparture{
		departure(1, 1, 20),
		departure(2, 2, 60, fullMoon),
		departure(3, 3, 30),
	}

	sel := SelectFeatured(candidates, cfg, selectorNow)

	assert.Equal(t, []uint{1, 3, 2}, sel.IDs())
}

func TestSelectFeaturedFillGapsOrdersByUrgency(t *testing.T) {
	cfg := defaultConfig()
	cfg.Mode = models.RotationModeFillGaps

	candidates := []models.GroupDeparture{
		departure(1, 1, 20, withBooked(2)),  // 10 left
		departure(2, 2, 60, withBooked(10)), // 2 left, nearly full
		departure(3, 3, 30, withBooked(6)),  // 6 left
	}

	sel := SelectFeatured(candidates, cfg, selectorNow)

	assert.Equal(t, []uint{2, 3, 1}, sel.IDs())
}

func TestSelectFeaturedLimitsSameRoute(t *testing.T) {
	// Five Lemosho departures and one Machame: the panel may not become a
	// Lemosho wall.
	candidates := []models.GroupDeparture{
		departure(1, 1, 20),
		departure(2, 1, 27),
		departure(3, 1, 34),
		departure(4, 1, 41),
		departure(5, 1, 48),
		departure(6, 2, 90),
	}

	sel := SelectFeatured(candidates, defaultConfig(), selectorNow)

	assert.Equal(t, []uint{1, 2, 6}, sel.IDs())
}

func TestSelectFeaturedManualPinsCountTowardRouteLimit(t *testing.T) {
	candidates := []models.GroupDeparture{
		departure(1, 1, 90, manuallyFeatured),
		departure(2, 1, 95, manuallyFeatured),
		departure(3, 1, 20), // automatic slot for route 1 is already used up
		departure(4, 2, 25),
	}

	sel := SelectFeatured(candidates, defaultConfig(), selectorNow)

	assert.Equal(t, []uint{1, 2, 4}, sel.IDs())
}

func TestSelectFeaturedDeterministic(t *testing.T) {
	candidates := []models.GroupDeparture{
		departure(3, 3, 20),
		departure(1, 1, 20),
		departure(2, 2, 20),
	}

	first := SelectFeatured(candidates, defaultConfig(), selectorNow)
	second := SelectFeatured(candidates, defaultConfig(), selectorNow)

	// Same arrival date everywhere: the ID tiebreak keeps runs identical.
	assert.Equal(t, first.IDs(), second.IDs())
	assert.Equal(t, []uint{1, 2, 3}, first.IDs())
}

func TestSelectFeaturedEmptyCandidates(t *testing.T) {
	sel := SelectFeatured(nil, defaultConfig(), selectorNow)

	assert.Empty(t, sel.Featured)
	assert.Empty(t, sel.IDs())
}

func TestSelectFeaturedZeroMaxFallsBackToDefault(t *testing.T) {
	var candidates []models.GroupDeparture
	for i := 1; i <= 15; i++ {
		candidates = append(candidates, departure(uint(i), uint(i), 20+i))
	}
	cfg := defaultConfig()
	cfg.MaxFeatured = 0

	sel := SelectFeatured(candidates, cfg, selectorNow)

	assert.Len(t, sel.Featured, models.DefaultMaxFeatured)
}

type mockRotationConfigRepo struct {
	mock.Mock
}

func (m *mockRotationConfigRepo) Get(ctx context.Context) (*models.RotationConfig, error) {
	args := m.Called(ctx)
	if cfg, ok := args.Get(0).(*models.RotationConfig); ok {
		return cfg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRotationConfigRepo) Save(ctx context.Context, cfg *models.RotationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func newRotationService(departureRepo *mockDepartureRepo, configRepo *mockRotationConfigRepo) *RotationService {
	return &RotationService{
		departureRepo: departureRepo,
		configRepo:    configRepo,
		featuredCache: cache.NewFeaturedCache(nil, time.Minute),
		now:           func() time.Time { return selectorNow },
	}
}

func TestRunRotationClosesPastAndFeatures(t *testing.T) {
	departureRepo := new(mockDepartureRepo)
	configRepo := new(mockRotationConfigRepo)
	service := newRotationService(departureRepo, configRepo)

	cfg := defaultConfig()
	cfg.ID = 1
	configRepo.On("Get", mock.Anything).Return(&cfg, nil)
	configRepo.On("Save", mock.Anything, mock.MatchedBy(func(saved *models.RotationConfig) bool {
		return saved.LastRunAt != nil && saved.LastRunSummary != ""
	})).Return(nil)

	past := departure(99, 9, -30)
	past.Route = models.TrekkingRoute{Name: "Machame Route"}
	departureRepo.On("FindPastUnclosed", mock.Anything, mock.Anything).
		Return([]models.GroupDeparture{past}, nil)
	departureRepo.On("UpdateStatus", mock.Anything, uint(99), models.DepartureStatusCompleted).Return(nil)

	candidates := []models.GroupDeparture{
		departure(1, 1, 30),
		departure(2, 2, 40),
	}
	departureRepo.On("FindUpcomingCandidates", mock.Anything, mock.Anything).Return(candidates, nil)
	departureRepo.On("SetFeatured", mock.Anything, []uint{1, 2}).Return(nil)

	summary, err := service.RunRotation(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Equal(t, 2, summary.FeaturedCount)
	assert.Equal(t, 0, summary.ManualCount)
	departureRepo.AssertExpectations(t)
	configRepo.AssertExpectations(t)
}

func TestRunRotationRefreshesCapacityStatus(t *testing.T) {
	departureRepo := new(mockDepartureRepo)
	configRepo := new(mockRotationConfigRepo)
	service := newRotationService(departureRepo, configRepo)

	cfg := defaultConfig()
	cfg.ID = 1
	configRepo.On("Get", mock.Anything).Return(&cfg, nil)
	configRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	departureRepo.On("FindPastUnclosed", mock.Anything, mock.Anything).
		Return([]models.GroupDeparture{}, nil)

	// An open departure with every seat sold must flip to full and drop out
	// of the panel.
	soldOut := departure(1, 1, 30, withBooked(12))
	departureRepo.On("FindUpcomingCandidates", mock.Anything, mock.Anything).
		Return([]models.GroupDeparture{soldOut, departure(2, 2, 40)}, nil)
	departureRepo.On("UpdateStatus", mock.Anything, uint(1), models.DepartureStatusFull).Return(nil)
	departureRepo.On("SetFeatured", mock.Anything, []uint{2}).Return(nil)

	summary, err := service.RunRotation(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, summary.FeaturedCount)
	assert.NotEmpty(t, summary.StatusChanges)
	departureRepo.AssertExpectations(t)
}

func TestGetConfigFallsBackToDefaults(t *testing.T) {
	configRepo := new(mockRotationConfigRepo)
	service := newRotationService(new(mockDepartureRepo), configRepo)

	// A never-seeded install has no config row; the site still rotates on
	// the defaults instead of erroring.
	configRepo.On("Get", mock.Anything).Return(nil, repositories.ErrNotFound)

	cfg, err := service.GetConfig(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.DefaultRotationConfig(), cfg)
}

func TestGetConfigPropagatesRepoError(t *testing.T) {
	configRepo := new(mockRotationConfigRepo)
	service := newRotationService(new(mockDepartureRepo), configRepo)

	configRepo.On("Get", mock.Anything).Return(nil, assert.AnError)

	_, err := service.GetConfig(context.Background())
	assert.Error(t, err)
}

func TestUpdateConfigRejectsBadValues(t *testing.T) {
	configRepo := new(mockRotationConfigRepo)
	service := newRotationService(new(mockDepartureRepo), configRepo)

	bad := defaultConfig()
	bad.MaxFeatured = 200

	err := service.UpdateConfig(context.Background(), 1, bad)
	assert.ErrorIs(t, err, ErrRotationBadConfig)

	badMode := defaultConfig()
	badMode.Mode = "chaotic"
	err = service.UpdateConfig(context.Background(), 1, badMode)
	assert.ErrorIs(t, err, ErrRotationBadConfig)

	configRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
