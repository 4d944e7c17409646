package models

import "time"

// BookingStatus enumerates a reservation's lifecycle.
type BookingStatus string

const (
	BookingStatusInquiry     BookingStatus = "inquiry"
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusDepositPaid BookingStatus = "deposit_paid"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRefunded    BookingStatus = "refunded"
	BookingStatusNoShow      BookingStatus = "no_show"
	BookingStatusCompleted   BookingStatus = "completed"
)

// ActiveBookingStatuses count against a departure's capacity. Inquiries do
// not hold seats; cancelled/refunded/no-show released theirs.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending, BookingStatusDepositPaid,
	BookingStatusConfirmed, BookingStatusCompleted,
}

// CountsAgainstCapacity reports whether s holds seats on its departure.
func (s BookingStatus) CountsAgainstCapacity() bool {
	for _, a := range ActiveBookingStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Booking is one reservation against a GroupDeparture. The lead climber is
// the contact on the booking itself and also occupies seat 0 of Climbers.
type Booking struct {
	BaseModel
	BookingRef  string         `gorm:"type:varchar(20);uniqueIndex;not null"`
	DepartureID uint           `gorm:"not null;index"`
	Departure   GroupDeparture `gorm:"foreignKey:DepartureID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`

	LeadName    string `gorm:"type:varchar(200);not null"`
	LeadEmail   string `gorm:"type:varchar(150);not null;index"`
	LeadPhone   string `gorm:"type:varchar(40)"`
	LeadCountry string `gorm:"type:varchar(80)"`

	TotalClimbers  int     `gorm:"type:integer;not null"`
	PricePerPerson float64 `gorm:"type:numeric(12,2);not null"`
	TotalPrice     float64 `gorm:"type:numeric(12,2);not null"`
	Currency       string  `gorm:"type:varchar(3);default:'USD'"`

	DepositPaid   bool       `gorm:"default:false"`
	DepositPaidAt *time.Time `gorm:"type:timestamptz"`
	BalancePaid   bool       `gorm:"default:false"`
	BalancePaidAt *time.Time `gorm:"type:timestamptz"`

	Status BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	// Attribution, straight off the landing request.
	Source      string `gorm:"type:varchar(80)"`
	UTMSource   string `gorm:"type:varchar(120)"`
	UTMMedium   string `gorm:"type:varchar(120)"`
	UTMCampaign string `gorm:"type:varchar(120)"`

	Climbers []Climber            `gorm:"foreignKey:BookingID"`
	Tokens   []ClimberDetailToken `gorm:"foreignKey:BookingID" json:"-"`
}
