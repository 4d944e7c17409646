package models

// Partner is a logo-wall entry on the public site (KPAP, local operators,
// gear sponsors).
type Partner struct {
	BaseModel
	Name     string `gorm:"type:varchar(200);not null"`
	Slug     string `gorm:"type:varchar(120);uniqueIndex;not null"`
	LogoURL  string `gorm:"type:varchar(500)"`
	Website  string `gorm:"type:varchar(500)"`
	Blurb    string `gorm:"type:text"`
	IsActive bool   `gorm:"default:true;index"`
	SortOrder int   `gorm:"type:integer;default:0;index"`
}
