// Package itinerary defines the tagged record shapes stored in the JSON
// columns of routes and safaris (day-by-day itinerary, FAQ, elevation
// profile, gallery) and validates them at the admin boundary. Malformed
// payloads are rejected outright rather than defaulting to null.
package itinerary

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is the root of every validation failure in this package; use
// errors.Is to detect it at the handler boundary.
var ErrMalformed = errors.New("malformed content payload")

// DayEntry is one day of a trek or safari itinerary.
type DayEntry struct {
	Day         int    `json:"day"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ElevationM  int    `json:"elevationM,omitempty"`
	DistanceKm  int    `json:"distanceKm,omitempty"`
	Habitat     string `json:"habitat,omitempty"`
	Meals       string `json:"meals,omitempty"`
}

// FAQEntry is one expandable question/answer pair.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ElevationPoint is one sample of the route elevation chart.
type ElevationPoint struct {
	Label      string `json:"label"`
	ElevationM int    `json:"elevationM"`
}

// GalleryImage is one public gallery item.
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// ParseDays decodes and validates an itinerary column. Days must be present,
// positive and strictly increasing; title and description are required.
func ParseDays(raw string) ([]DayEntry, error) {
	var days []DayEntry
	if err := decodeStrict(raw, &days); err != nil {
		return nil, err
	}
	lastDay := 0
	for i, d := range days {
		if d.Day <= 0 {
			return nil, fmt.Errorf("%w: entry %d has non-positive day number", ErrMalformed, i)
		}
		if d.Day <= lastDay {
			return nil, fmt.Errorf("%w: day numbers must increase (entry %d)", ErrMalformed, i)
		}
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("%w: day %d is missing a title", ErrMalformed, d.Day)
		}
		if strings.TrimSpace(d.Description) == "" {
			return nil, fmt.Errorf("%w: day %d is missing a description", ErrMalformed, d.Day)
		}
		lastDay = d.Day
	}
	return days, nil
}

// ParseFAQ decodes and validates a FAQ column.
func ParseFAQ(raw string) ([]FAQEntry, error) {
	var entries []FAQEntry
	if err := decodeStrict(raw, &entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" || strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("%w: FAQ entry %d needs both question and answer", ErrMalformed, i)
		}
	}
	return entries, nil
}

// ParseElevation decodes and validates an elevation-profile column. Points
// need labels; altitudes must be plausible for Tanzania (0..6000 m).
func ParseElevation(raw string) ([]ElevationPoint, error) {
	var points []ElevationPoint
	if err := decodeStrict(raw, &points); err != nil {
		return nil, err
	}
	for i, p := range points {
		if strings.TrimSpace(p.Label) == "" {
			return nil, fmt.Errorf("%w: elevation point %d is missing a label", ErrMalformed, i)
		}
		if p.ElevationM < 0 || p.ElevationM > 6000 {
			return nil, fmt.Errorf("%w: elevation point %d out of range (%dm)", ErrMalformed, i, p.ElevationM)
		}
	}
	return points, nil
}

// ParseGallery decodes and validates a gallery column.
func ParseGallery(raw string) ([]GalleryImage, error) {
	var images []GalleryImage
	if err := decodeStrict(raw, &images); err != nil {
		return nil, err
	}
	for i, img := range images {
		if strings.TrimSpace(img.URL) == "" {
			return nil, fmt.Errorf("%w: gallery image %d is missing a URL", ErrMalformed, i)
		}
	}
	return images, nil
}

// decodeStrict treats empty input as an empty list and rejects unknown fields
// so a typoed admin payload fails loudly instead of dropping data.
func decodeStrict(raw string, out any) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "[]" || trimmed == "null" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
