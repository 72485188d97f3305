package pagination

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// Parse reads page/per_page from the query string, falling back to sane
// defaults instead of erroring on garbage input.
func Parse(c *fiber.Ctx) Params {
	p := Params{Page: 1, PerPage: DefaultPerPage}

	if s := c.Query("page"); s != "" {
		var n int
		if _, err := fmt.Sscan(s, &n); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if s := c.Query("per_page"); s != "" {
		var n int
		if _, err := fmt.Sscan(s, &n); err == nil && n >= 1 {
			p.PerPage = n
			if p.PerPage > MaxPerPage {
				p.PerPage = MaxPerPage
			}
		}
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Envelope mirrors the paginator shape the frontend expects.
type Envelope struct {
	Data        any   `json:"data"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	Total       int64 `json:"total"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

// Wrap builds the envelope for one page. count is the number of rows actually
// on this page, data the serialized rows.
func (p Params) Wrap(data any, count int, total int64) Envelope {
	lastPage := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	from, to := 0, 0
	if count > 0 {
		from = p.Offset() + 1
		to = p.Offset() + count
	}

	return Envelope{
		Data:        data,
		CurrentPage: p.Page,
		LastPage:    lastPage,
		Total:       total,
		From:        from,
		To:          to,
	}
}
