package models

// SafariPackage is a Tanzania safari product (Serengeti, Ngorongoro, day
// trips). Same JSON-column conventions as TrekkingRoute.
type SafariPackage struct {
	BaseModel
	Slug        string `gorm:"type:varchar(120);uniqueIndex;not null"`
	Name        string `gorm:"type:varchar(200);not null"`
	Summary     string `gorm:"type:varchar(500)"`
	Description string `gorm:"type:text"`

	DurationDays int     `gorm:"type:integer;not null"`
	ParksVisited string  `gorm:"type:varchar(500)"` // comma-separated display list
	PriceFrom    float64 `gorm:"type:numeric(12,2);default:0.00"`
	Currency     string  `gorm:"type:varchar(3);default:'USD'"`

	ItineraryJSON string `gorm:"type:jsonb;default:'[]'"`
	GalleryJSON   string `gorm:"type:jsonb;default:'[]'"`

	IsPublished bool `gorm:"default:false;index"`
	SortOrder   int  `gorm:"type:integer;default:0;index"`
}
