package models

// TrekkingRoute is a Kilimanjaro route as marketed on the public site
// (Lemosho, Machame, Rongai, ...). Itinerary, FAQ, elevation profile and
// gallery are stored as JSON text columns; their shapes are validated by
// pkg/itinerary at the admin boundary, never trusted at render time.
type TrekkingRoute struct {
	BaseModel
	Slug        string `gorm:"type:varchar(120);uniqueIndex;not null"`
	Name        string `gorm:"type:varchar(200);not null"`
	Summary     string `gorm:"type:varchar(500)"`
	Description string `gorm:"type:text"`

	DurationDays  int    `gorm:"type:integer;not null"`
	Difficulty    string `gorm:"type:varchar(30)"` // moderate, challenging, strenuous
	DistanceKm    int    `gorm:"type:integer"`
	MaxAltitudeM  int    `gorm:"type:integer;default:5895"`
	PriceFrom     float64 `gorm:"type:numeric(12,2);default:0.00"`
	Currency      string  `gorm:"type:varchar(3);default:'USD'"`
	SuccessRate   int     `gorm:"type:integer"` // summit success, percent

	ItineraryJSON        string `gorm:"type:jsonb;default:'[]'"`
	FAQJSON              string `gorm:"type:jsonb;default:'[]'"`
	ElevationProfileJSON string `gorm:"type:jsonb;default:'[]'"`
	GalleryJSON          string `gorm:"type:jsonb;default:'[]'"`

	IsPublished bool `gorm:"default:false;index"`
	SortOrder   int  `gorm:"type:integer;default:0;index"`

	Departures []GroupDeparture `gorm:"foreignKey:RouteID"`
}
