package models

import "time"

// Climber is one seat on a booking and carries the personal trekking details
// each traveler self-reports through a detail token (or the lead fills in on
// their behalf). Seat 0 is the lead climber.
type Climber struct {
	BaseModel
	BookingID uint `gorm:"not null;index:idx_climber_booking_seat,unique"`
	SeatIndex int  `gorm:"type:integer;not null;index:idx_climber_booking_seat,unique"`

	FullName string `gorm:"type:varchar(200)"`
	Email    string `gorm:"type:varchar(150)"`
	Phone    string `gorm:"type:varchar(40)"`

	PassportNumber      string     `gorm:"type:varchar(40)"`
	PassportNationality string     `gorm:"type:varchar(80)"`
	PassportExpiry      *time.Time `gorm:"type:date"`
	DateOfBirth         *time.Time `gorm:"type:date"`

	DietaryNotes          string `gorm:"type:text"`
	MedicalNotes          string `gorm:"type:text"`
	EmergencyContactName  string `gorm:"type:varchar(200)"`
	EmergencyContactPhone string `gorm:"type:varchar(40)"`

	// DetailsComplete flips exactly once, guarded by a compare-and-swap in the
	// repository so a stale open tab can never clobber a finished submission.
	DetailsComplete bool       `gorm:"not null;default:false"`
	CompletedAt     *time.Time `gorm:"type:timestamptz"`
}

// ClimberDetailToken is a single-use, time-bound credential scoping access to
// one climber seat within one booking. There is no renewal: once expired or
// consumed, the lead requests a fresh token and the old one stays dead.
type ClimberDetailToken struct {
	BaseModel
	Code      string `gorm:"type:varchar(24);uniqueIndex;not null"`
	BookingID uint   `gorm:"not null;index"`
	SeatIndex int    `gorm:"type:integer;not null"`

	ExpiresAt   time.Time  `gorm:"type:timestamptz;not null;index"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
}

// IsExpired reports whether the token is past its validity window at now.
func (t *ClimberDetailToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsConsumed reports whether the token was already used for a submission.
func (t *ClimberDetailToken) IsConsumed() bool {
	return t.CompletedAt != nil
}
