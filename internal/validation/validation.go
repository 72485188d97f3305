package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Errors collects per-field validation messages.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// Respond renders the collected messages as a 422 with a field→message map.
func Respond(c *fiber.Ctx, e Errors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "The given data was invalid.",
		"errors":  e,
	})
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize strips markup tags and surrounding whitespace from free-text
// input before validation.
func Sanitize(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
