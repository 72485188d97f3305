package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/config"
	"pos-backend/internal/customer"
	"pos-backend/internal/menu"
	"pos-backend/internal/metrics"
	"pos-backend/internal/models"
	"pos-backend/internal/order"
	"pos-backend/internal/payment"
	"pos-backend/internal/user"
)

// New builds the Fiber app with the full route surface wired. Kept separate
// from main so tests can run requests through app.Test.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error().Err(err).Str("path", c.Path()).Msg("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	// Public: login, QR customer registration, menu browsing
	app.Post("/login", auth.LoginHandler(cfg))
	app.Post("/customers", auth.OptionalJWT(cfg), customer.CreateHandler())
	app.Get("/menus", menu.ListHandler())
	app.Get("/menus/:id", menu.GetHandler())

	// Any authenticated user. Role middleware goes per route: the admin and
	// staff sets share path prefixes, so prefix groups would overlap. The
	// group sits at the root prefix, so unknown paths answer 401 before 404.
	protected := app.Group("", auth.JWTMiddleware(cfg))
	protected.Post("/logout", auth.LogoutHandler())
	protected.Post("/logout-all", auth.LogoutAllHandler())
	protected.Get("/me", auth.MeHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)
	staff := auth.RequireRole(models.RoleAdmin, models.RoleCashier)

	protected.Get("/users", adminOnly, user.ListHandler())
	protected.Post("/users", adminOnly, user.CreateHandler())
	protected.Get("/users/:id", adminOnly, user.GetHandler())
	protected.Put("/users/:id", adminOnly, user.UpdateHandler())
	protected.Delete("/users/:id", adminOnly, user.DeleteHandler())

	protected.Post("/menus", adminOnly, menu.CreateHandler())
	protected.Put("/menus/:id", adminOnly, menu.UpdateHandler())
	protected.Delete("/menus/:id", adminOnly, menu.DeleteHandler())

	protected.Get("/audit-logs", adminOnly, audit.ListLogsHandler())
	protected.Get("/audit-logs/:id", adminOnly, audit.GetLogHandler())

	protected.Get("/orders", staff, order.ListHandler())
	protected.Post("/orders", staff, order.CreateHandler())
	protected.Get("/orders/:id", staff, order.GetHandler())
	protected.Put("/orders/:id", staff, order.UpdateHandler())
	protected.Post("/orders/:id/advance", staff, order.AdvanceHandler())
	protected.Delete("/orders/:id", staff, order.DeleteHandler())

	protected.Get("/payments", staff, payment.ListHandler())
	protected.Post("/payments", staff, payment.CreateHandler())
	protected.Get("/payments/:id", staff, payment.GetHandler())
	protected.Put("/payments/:id", staff, payment.UpdateHandler())

	protected.Get("/customers", staff, customer.ListHandler())
	protected.Get("/customers/:id", staff, customer.GetHandler())
	protected.Put("/customers/:id", staff, customer.UpdateHandler())

	return app
}
