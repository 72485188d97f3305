package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseVia(t *testing.T, target string) Params {
	t.Helper()

	var got Params
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		got = Parse(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return got
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := parseVia(t, "/items")
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPerPage, p.PerPage)
	})

	t.Run("explicit values", func(t *testing.T) {
		p := parseVia(t, "/items?page=3&per_page=25")
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 25, p.PerPage)
		assert.Equal(t, 50, p.Offset())
	})

	t.Run("garbage falls back to defaults", func(t *testing.T) {
		p := parseVia(t, "/items?page=zero&per_page=-4")
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, DefaultPerPage, p.PerPage)
	})

	t.Run("per_page is capped", func(t *testing.T) {
		p := parseVia(t, "/items?per_page=9999")
		assert.Equal(t, MaxPerPage, p.PerPage)
	})
}

func TestWrap(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		p := Params{Page: 2, PerPage: 10}
		env := p.Wrap([]int{1, 2, 3}, 3, 23)
		assert.Equal(t, 2, env.CurrentPage)
		assert.Equal(t, 3, env.LastPage)
		assert.Equal(t, int64(23), env.Total)
		assert.Equal(t, 11, env.From)
		assert.Equal(t, 13, env.To)
	})

	t.Run("empty result", func(t *testing.T) {
		p := Params{Page: 1, PerPage: 15}
		env := p.Wrap([]int{}, 0, 0)
		assert.Equal(t, 1, env.LastPage)
		assert.Zero(t, env.From)
		assert.Zero(t, env.To)
	})

	t.Run("exact page boundary", func(t *testing.T) {
		p := Params{Page: 2, PerPage: 10}
		env := p.Wrap(nil, 10, 20)
		assert.Equal(t, 2, env.LastPage)
		assert.Equal(t, 11, env.From)
		assert.Equal(t, 20, env.To)
	})
}
