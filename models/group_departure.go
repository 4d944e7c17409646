package models

import "time"

// DepartureStatus enumerates the lifecycle of a scheduled group climb.
type DepartureStatus string

const (
	DepartureStatusDraft      DepartureStatus = "draft"
	DepartureStatusOpen       DepartureStatus = "open"
	DepartureStatusLimited    DepartureStatus = "limited" // filling up, few spots left
	DepartureStatusFull       DepartureStatus = "full"
	DepartureStatusGuaranteed DepartureStatus = "guaranteed" // min participants reached
	DepartureStatusCancelled  DepartureStatus = "cancelled"
	DepartureStatusCompleted  DepartureStatus = "completed"
)

// BookableStatuses are the statuses a public visitor can book into and the
// rotation selector may feature.
var BookableStatuses = []DepartureStatus{
	DepartureStatusOpen, DepartureStatusLimited, DepartureStatusGuaranteed,
}

// IsBookable reports whether s accepts new bookings.
func (s DepartureStatus) IsBookable() bool {
	for _, b := range BookableStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// GroupDeparture is one dated instance of a TrekkingRoute open for group
// booking. Invariants enforced in the service layer: BookedSpots never exceeds
// MaxParticipants, MinParticipants never exceeds MaxParticipants.
type GroupDeparture struct {
	BaseModel
	RouteID uint          `gorm:"not null;index"`
	Route   TrekkingRoute `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`

	ArrivalDate time.Time  `gorm:"type:date;not null;index"`
	StartDate   time.Time  `gorm:"type:date;not null"`
	SummitDate  *time.Time `gorm:"type:date"`
	EndDate     time.Time  `gorm:"type:date;not null;index"`

	Price    float64 `gorm:"type:numeric(12,2);not null"`
	Currency string  `gorm:"type:varchar(3);default:'USD'"`

	MinParticipants int `gorm:"type:integer;default:2"`
	MaxParticipants int `gorm:"type:integer;default:12"`
	BookedSpots     int `gorm:"type:integer;default:0"`

	Status DepartureStatus `gorm:"type:varchar(20);not null;default:'draft';index"`

	IsFullMoon          bool `gorm:"default:false;index"`
	IsGuaranteed        bool `gorm:"default:false"`
	IsFeatured          bool `gorm:"default:false;index"`
	IsManuallyFeatured  bool `gorm:"default:false;index"`
	ExcludeFromRotation bool `gorm:"default:false"`

	InternalNotes string `gorm:"type:text" json:"-"`
	PublicNotes   string `gorm:"type:text"`

	Bookings []Booking `gorm:"foreignKey:DepartureID"`
}

// SpotsRemaining is never negative even if data drifts.
func (d *GroupDeparture) SpotsRemaining() int {
	if remaining := d.MaxParticipants - d.BookedSpots; remaining > 0 {
		return remaining
	}
	return 0
}
