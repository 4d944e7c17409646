package queryparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateClampsOutOfRangeValues(t *testing.T) {
	p := ListParams{Page: -3, PerPage: 500, OrderBy: "DESC"}
	p.Validate()

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxPerPage, p.PerPage)
	assert.Equal(t, "desc", p.OrderBy)
}

func TestValidateNormalizesOrderDirection(t *testing.T) {
	p := ListParams{Page: 2, PerPage: 25, OrderBy: "ASC"}
	p.Validate()
	assert.Equal(t, "asc", p.OrderBy)

	p = ListParams{Page: 2, PerPage: 25, OrderBy: "sideways"}
	p.Validate()
	assert.Equal(t, DefaultOrderBy, p.OrderBy)
}

func TestValidateFillsMissingDefaults(t *testing.T) {
	var p ListParams
	p.Validate()

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultPerPage, p.PerPage)
	assert.Equal(t, DefaultOrderBy, p.OrderBy)
}

func TestCalculateOffset(t *testing.T) {
	p := ListParams{Page: 1, PerPage: 20}
	assert.Equal(t, 0, p.CalculateOffset())

	p = ListParams{Page: 4, PerPage: 25}
	assert.Equal(t, 75, p.CalculateOffset())
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 1, CalculateTotalPages(0, 20))
	assert.Equal(t, 1, CalculateTotalPages(20, 20))
	assert.Equal(t, 2, CalculateTotalPages(21, 20))
	assert.Equal(t, 5, CalculateTotalPages(100, 20))
	assert.Equal(t, 1, CalculateTotalPages(10, 0))
}
