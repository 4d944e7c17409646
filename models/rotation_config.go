package models

import "time"

// RotationMode selects the featuring strategy.
type RotationMode string

const (
	RotationModeDefault      RotationMode = "default"
	RotationModeSoonestFirst RotationMode = "soonest_first"
	RotationModeFillGaps     RotationMode = "fill_gaps"
)

// DefaultMaxFeatured caps the featured panel on the public site.
const DefaultMaxFeatured = 10

// RotationConfig is the process-wide singleton configuring the departure
// featuring heuristic. It is read at render time and mutated only by admin
// edits or a rotation run; the selector itself receives it as a plain value
// so it stays a pure function of (candidates, config, now).
type RotationConfig struct {
	BaseModel
	Enabled            bool         `gorm:"default:true"`
	Mode               RotationMode `gorm:"type:varchar(20);not null;default:'default'"`
	SkipWithinDays     int          `gorm:"type:integer;default:0"`
	PrioritizeFullMoon bool         `gorm:"default:false"`
	MaxFeatured        int          `gorm:"type:integer;default:10"`

	LastRunAt      *time.Time `gorm:"type:timestamptz"`
	LastRunSummary string     `gorm:"type:jsonb;default:'{}'"`
}

// DefaultRotationConfig is the fallback when no row exists yet.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		Enabled:            true,
		Mode:               RotationModeDefault,
		SkipWithinDays:     0,
		PrioritizeFullMoon: false,
		MaxFeatured:        DefaultMaxFeatured,
	}
}
