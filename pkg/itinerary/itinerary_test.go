package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDaysValid(t *testing.T) {
	raw := `[
		{"day": 1, "title": "Londorossi Gate to Mti Mkubwa", "description": "Rainforest walk.", "elevationM": 2780, "habitat": "Rainforest"},
		{"day": 2, "title": "Shira 1 Camp", "description": "Cross the Shira ridge.", "elevationM": 3500}
	]`

	days, err := ParseDays(raw)

	assert.NoError(t, err)
	assert.Len(t, days, 2)
	assert.Equal(t, "Shira 1 Camp", days[1].Title)
}

func TestParseDaysEmptyVariants(t *testing.T) {
	for _, raw := range []string{"", "  ", "[]", "null"} {
		days, err := ParseDays(raw)
		assert.NoError(t, err)
		assert.Nil(t, days)
	}
}

func TestParseDaysRejectsNonIncreasingDays(t *testing.T) {
	raw := `[
		{"day": 2, "title": "A", "description": "a"},
		{"day": 2, "title": "B", "description": "b"}
	]`

	_, err := ParseDays(raw)

	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseDaysRejectsMissingTitle(t *testing.T) {
	_, err := ParseDays(`[{"day": 1, "title": "  ", "description": "x"}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseDaysRejectsUnknownFields(t *testing.T) {
	// A typoed field must fail loudly, not silently drop data.
	_, err := ParseDays(`[{"day": 1, "titel": "Gate", "description": "x"}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseDaysRejectsMalformedJSON(t *testing.T) {
	_, err := ParseDays(`{"not": "a list"`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseFAQ(t *testing.T) {
	faq, err := ParseFAQ(`[{"question": "Do I need a visa?", "answer": "Most nationalities can buy one on arrival."}]`)
	assert.NoError(t, err)
	assert.Len(t, faq, 1)

	_, err = ParseFAQ(`[{"question": "Orphaned question", "answer": ""}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseElevationRange(t *testing.T) {
	points, err := ParseElevation(`[{"label": "Uhuru Peak", "elevationM": 5895}]`)
	assert.NoError(t, err)
	assert.Equal(t, 5895, points[0].ElevationM)

	_, err = ParseElevation(`[{"label": "Space Camp", "elevationM": 9000}]`)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseElevation(`[{"label": "", "elevationM": 3000}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseGallery(t *testing.T) {
	images, err := ParseGallery(`[{"url": "https://cdn.example.com/summit.jpg", "caption": "Summit morning"}]`)
	assert.NoError(t, err)
	assert.Len(t, images, 1)

	_, err = ParseGallery(`[{"url": " "}]`)
	assert.ErrorIs(t, err, ErrMalformed)
}
