package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"kiliheights.com/configs/configslog"
	"kiliheights.com/configs/configsredis"
	"kiliheights.com/models"
	"kiliheights.com/pkg/cache"
	"kiliheights.com/repositories"

	"go.uber.org/zap"
)

// RotationServiceError covers rotation-specific failures.
type RotationServiceError string

func (e RotationServiceError) Error() string { return string(e) }

const (
	ErrRotationRunFailed RotationServiceError = "rotation run failed"
	ErrRotationBadConfig RotationServiceError = "invalid rotation configuration"
)

// maxSameRouteFeatured caps how often one route may appear in the featured
// panel: the walk skips a candidate once its route is already shown twice.
const maxSameRouteFeatured = 2

// RotationSelection is the outcome of one selector pass.
type RotationSelection struct {
	Featured    []models.GroupDeparture
	ManualCount int
}

// IDs returns the featured departure IDs in panel order.
func (s RotationSelection) IDs() []uint {
	ids := make([]uint, 0, len(s.Featured))
	for _, d := range s.Featured {
		ids = append(ids, d.ID)
	}
	return ids
}

// SelectFeatured ranks and selects the departures to feature on the public
// site. It is a pure function of (candidates, cfg, now): no clock reads, no
// database. Candidates are expected in stored order; manual pins keep it.
//
// Manual pins are always included, even when ExcludeFromRotation is set:
// an explicit admin pin outranks the automatic exclusion. The automatic pool
// is filtered (bookable status, skip-window, not excluded), sorted by the
// configured strategy and walked into the panel up to the display cap,
// skipping routes already shown twice.
func SelectFeatured(candidates []models.GroupDeparture, cfg models.RotationConfig, now time.Time) RotationSelection {
	if cfg.MaxFeatured <= 0 {
		cfg.MaxFeatured = models.DefaultMaxFeatured
	}

	featured := make([]models.GroupDeparture, 0, cfg.MaxFeatured)
	routeCounts := make(map[uint]int)

	for _, d := range candidates {
		if d.IsManuallyFeatured {
			featured = append(featured, d)
			routeCounts[d.RouteID]++
		}
	}
	manualCount := len(featured)

	if !cfg.Enabled {
		return RotationSelection{Featured: featured, ManualCount: manualCount}
	}

	cutoff := now.AddDate(0, 0, cfg.SkipWithinDays)
	eligible := make([]models.GroupDeparture, 0, len(candidates))
	for _, d := range candidates {
		if d.IsManuallyFeatured || d.ExcludeFromRotation {
			continue
		}
		if !d.Status.IsBookable() {
			continue
		}
		if d.ArrivalDate.Before(cutoff) {
			continue
		}
		eligible = append(eligible, d)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if cfg.PrioritizeFullMoon && a.IsFullMoon != b.IsFullMoon {
			return a.IsFullMoon
		}
		switch cfg.Mode {
		case models.RotationModeFillGaps:
			// Urgency first: fewest spots remaining surfaces nearly-full
			// departures that need one more group to run.
			if a.SpotsRemaining() != b.SpotsRemaining() {
				return a.SpotsRemaining() < b.SpotsRemaining()
			}
			if !a.ArrivalDate.Equal(b.ArrivalDate) {
				return a.ArrivalDate.Before(b.ArrivalDate)
			}
		default:
			// default and soonest_first: soonest arrival, urgency tiebreak.
			if !a.ArrivalDate.Equal(b.ArrivalDate) {
				return a.ArrivalDate.Before(b.ArrivalDate)
			}
			if a.SpotsRemaining() != b.SpotsRemaining() {
				return a.SpotsRemaining() < b.SpotsRemaining()
			}
		}
		return a.ID < b.ID
	})

	for _, d := range eligible {
		if len(featured) >= cfg.MaxFeatured {
			break
		}
		if routeCounts[d.RouteID] >= maxSameRouteFeatured {
			continue
		}
		featured = append(featured, d)
		routeCounts[d.RouteID]++
	}

	return RotationSelection{Featured: featured, ManualCount: manualCount}
}

// RotationRunSummary is persisted (as JSON) on the config row after a run.
type RotationRunSummary struct {
	RanAt          time.Time `json:"ranAt"`
	FeaturedCount  int       `json:"featuredCount"`
	ManualCount    int       `json:"manualCount"`
	CompletedCount int       `json:"completedCount"`
	StatusChanges  []string  `json:"statusChanges,omitempty"`
}

// IRotationService runs the featuring heuristic against the live data.
type IRotationService interface {
	GetConfig(ctx context.Context) (models.RotationConfig, error)
	UpdateConfig(ctx context.Context, updatedByUserID uint, cfg models.RotationConfig) error
	RunRotation(ctx context.Context) (RotationRunSummary, error)
	GetFeatured(ctx context.Context) ([]models.GroupDeparture, error)
}

// RotationService wires the pure selector to repositories and the redis
// snapshot cache.
type RotationService struct {
	departureRepo repositories.IDepartureRepository
	configRepo    repositories.IRotationConfigRepository
	featuredCache *cache.FeaturedCache
	now           func() time.Time
}

func NewRotationService() IRotationService {
	return &RotationService{
		departureRepo: repositories.NewDepartureRepository(),
		configRepo:    repositories.NewRotationConfigRepository(),
		featuredCache: cache.NewFeaturedCache(configsredis.GetRedis(), 10*time.Minute),
		now:           time.Now,
	}
}

// GetConfig returns the stored config, or defaults when never seeded.
func (s *RotationService) GetConfig(ctx context.Context) (models.RotationConfig, error) {
	cfg, err := s.configRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.DefaultRotationConfig(), nil
		}
		return models.RotationConfig{}, err
	}
	return *cfg, nil
}

// UpdateConfig validates and persists admin edits to the singleton.
func (s *RotationService) UpdateConfig(ctx context.Context, updatedByUserID uint, cfg models.RotationConfig) error {
	if cfg.SkipWithinDays < 0 || cfg.MaxFeatured < 0 || cfg.MaxFeatured > 50 {
		return ErrRotationBadConfig
	}
	switch cfg.Mode {
	case models.RotationModeDefault, models.RotationModeSoonestFirst, models.RotationModeFillGaps:
	default:
		return ErrRotationBadConfig
	}

	existing, err := s.configRepo.Get(ctx)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	if existing != nil {
		cfg.BaseModel = existing.BaseModel
		cfg.LastRunAt = existing.LastRunAt
		cfg.LastRunSummary = existing.LastRunSummary
	}

	ctx = models.ContextWithUserID(ctx, updatedByUserID)
	if err := s.configRepo.Save(ctx, &cfg); err != nil {
		configslog.Log.Error("failed to save rotation config", zap.Error(err))
		return err
	}
	configslog.SLog.Infof("rotation config updated by user %d (mode=%s, skipWithinDays=%d)",
		updatedByUserID, cfg.Mode, cfg.SkipWithinDays)
	return nil
}

// RunRotation closes out past departures, recomputes the featured panel and
// records the run on the config row. Invoked from the admin endpoint and
// lazily before rendering the public departures page.
func (s *RotationService) RunRotation(ctx context.Context) (RotationRunSummary, error) {
	now := s.now().UTC()
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return RotationRunSummary{}, err
	}

	summary := RotationRunSummary{RanAt: now}

	// Close out departures whose dates have passed.
	past, err := s.departureRepo.FindPastUnclosed(ctx, now)
	if err != nil {
		configslog.Log.Error("rotation: failed to load past departures", zap.Error(err))
		return summary, ErrRotationRunFailed
	}
	for _, d := range past {
		if err := s.departureRepo.UpdateStatus(ctx, d.ID, models.DepartureStatusCompleted); err != nil {
			configslog.Log.Error("rotation: failed to complete departure",
				zap.Uint("departureID", d.ID), zap.Error(err))
			continue
		}
		summary.CompletedCount++
		summary.StatusChanges = append(summary.StatusChanges,
			statusChangeNote(d, models.DepartureStatusCompleted))
	}

	candidates, err := s.departureRepo.FindUpcomingCandidates(ctx, now)
	if err != nil {
		configslog.Log.Error("rotation: failed to load candidates", zap.Error(err))
		return summary, ErrRotationRunFailed
	}

	// Refresh capacity-derived statuses before selecting.
	for i := range candidates {
		if next, changed := deriveCapacityStatus(&candidates[i]); changed {
			if err := s.departureRepo.UpdateStatus(ctx, candidates[i].ID, next); err != nil {
				configslog.Log.Error("rotation: failed to update departure status",
					zap.Uint("departureID", candidates[i].ID), zap.Error(err))
				continue
			}
			summary.StatusChanges = append(summary.StatusChanges,
				statusChangeNote(candidates[i], next))
			candidates[i].Status = next
		}
	}

	selection := SelectFeatured(candidates, cfg, now)
	summary.FeaturedCount = len(selection.Featured)
	summary.ManualCount = selection.ManualCount

	if err := s.departureRepo.SetFeatured(ctx, selection.IDs()); err != nil {
		configslog.Log.Error("rotation: failed to persist featured flags", zap.Error(err))
		return summary, ErrRotationRunFailed
	}

	if err := s.persistSummary(ctx, cfg, summary); err != nil {
		// Observability only; the selection itself already landed.
		configslog.Log.Warn("rotation: failed to persist run summary", zap.Error(err))
	}

	if err := s.featuredCache.Invalidate(ctx); err != nil {
		configslog.Log.Warn("rotation: failed to invalidate featured cache", zap.Error(err))
	}

	configslog.SLog.Infof("rotation run finished: %d featured (%d manual), %d completed",
		summary.FeaturedCount, summary.ManualCount, summary.CompletedCount)
	return summary, nil
}

// rotationStaleAfter is how old a run may get before a public read
// triggers a fresh one.
const rotationStaleAfter = 24 * time.Hour

// GetFeatured serves the featured panel, preferring the redis snapshot.
// On a cache miss a stale panel is recomputed first, so the public site
// keeps rotating even if nobody presses the admin button.
func (s *RotationService) GetFeatured(ctx context.Context) ([]models.GroupDeparture, error) {
	if cached, err := s.featuredCache.Get(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		configslog.Log.Warn("featured cache read failed", zap.Error(err))
	}

	if cfg, err := s.GetConfig(ctx); err == nil {
		if cfg.LastRunAt == nil || s.now().UTC().Sub(*cfg.LastRunAt) > rotationStaleAfter {
			if _, err := s.RunRotation(ctx); err != nil {
				configslog.Log.Warn("lazy rotation run failed", zap.Error(err))
			}
		}
	}

	featured, err := s.departureRepo.FindFeatured(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.featuredCache.Set(ctx, featured); err != nil {
		configslog.Log.Warn("featured cache write failed", zap.Error(err))
	}
	return featured, nil
}

func (s *RotationService) persistSummary(ctx context.Context, cfg models.RotationConfig, summary RotationRunSummary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	stored, err := s.configRepo.Get(ctx)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return err
		}
		fresh := models.DefaultRotationConfig()
		stored = &fresh
	}
	stored.LastRunAt = &summary.RanAt
	stored.LastRunSummary = string(raw)
	return s.configRepo.Save(ctx, stored)
}

// deriveCapacityStatus computes the status a bookable departure should carry
// given its fill level. Draft, cancelled and completed are never touched;
// a manual guaranteed flag is preserved.
func deriveCapacityStatus(d *models.GroupDeparture) (models.DepartureStatus, bool) {
	if !d.Status.IsBookable() {
		return d.Status, false
	}

	var next models.DepartureStatus
	switch {
	case d.BookedSpots >= d.MaxParticipants:
		next = models.DepartureStatusFull
	case d.IsGuaranteed || d.BookedSpots >= d.MinParticipants:
		next = models.DepartureStatusGuaranteed
	case d.MaxParticipants > 0 && d.BookedSpots*10 >= d.MaxParticipants*7:
		next = models.DepartureStatusLimited
	default:
		next = models.DepartureStatusOpen
	}
	return next, next != d.Status
}

func statusChangeNote(d models.GroupDeparture, next models.DepartureStatus) string {
	return fmt.Sprintf("%s #%d: %s -> %s",
		d.ArrivalDate.Format("2006-01-02"), d.ID, d.Status, next)
}

var _ IRotationService = (*RotationService)(nil)
