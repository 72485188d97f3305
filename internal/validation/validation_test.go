package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "Adobo", Sanitize("  Adobo  "))
	assert.Equal(t, "Spicy wings", Sanitize("<b>Spicy</b> wings"))
	assert.Equal(t, "alert('x')", Sanitize("<script>alert('x')</script>"))
	assert.Equal(t, "", Sanitize("<br/>"))
	assert.Equal(t, "plain", Sanitize("plain"))
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.False(t, errs.Any())

	errs.Add("name", "name is required")
	errs.Add("name", "second message is ignored")
	errs.Add("price", "price must not be negative")

	assert.True(t, errs.Any())
	assert.Equal(t, "name is required", errs["name"])
	assert.Len(t, errs, 2)
}
