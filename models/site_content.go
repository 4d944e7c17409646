package models

import "time"

// SiteSetting is a key/value row backing the footer, contact block and other
// small editable fragments of the public site.
type SiteSetting struct {
	BaseModel
	Key         string `gorm:"type:varchar(120);uniqueIndex;not null"`
	Value       string `gorm:"type:text"`
	Group       string `gorm:"type:varchar(80);index;column:setting_group"`
	Description string `gorm:"type:varchar(300)"`
}

// PageHero is a large banner slot on a public page, editable from the
// dashboard homepage-content screen.
type PageHero struct {
	BaseModel
	PageKey  string `gorm:"type:varchar(80);not null;index"` // home, routes, safaris, blog
	Title    string `gorm:"type:varchar(255);not null"`
	Subtitle string `gorm:"type:varchar(500)"`
	ImageURL string `gorm:"type:varchar(500)"`
	CTALabel string `gorm:"type:varchar(120)"`
	CTAURL   string `gorm:"type:varchar(500)"`
	IsActive bool   `gorm:"default:true;index"`
	SortOrder int   `gorm:"type:integer;default:0"`
}

// BlogPost is a marketing article. Nil PublishedAt means draft.
type BlogPost struct {
	BaseModel
	Slug          string     `gorm:"type:varchar(160);uniqueIndex;not null"`
	Title         string     `gorm:"type:varchar(255);not null"`
	Excerpt       string     `gorm:"type:varchar(500)"`
	Body          string     `gorm:"type:text"`
	CoverImageURL string     `gorm:"type:varchar(500)"`
	AuthorName    string     `gorm:"type:varchar(150)"`
	Tags          string     `gorm:"type:varchar(300)"` // comma-separated
	PublishedAt   *time.Time `gorm:"type:timestamptz;index"`
}

// IsPublished reports whether the post is publicly visible at now.
func (p *BlogPost) IsPublished(now time.Time) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(now)
}
