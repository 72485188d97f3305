package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "orders_created_total",
		Help:      "Orders created through the API.",
	})
	OrderStatusAdvanced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "order_status_advanced_total",
		Help:      "Successful order status advance operations.",
	})
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "payments_recorded_total",
		Help:      "Payment records created.",
	})
	AuditRecords = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pos",
		Name:      "audit_records_total",
		Help:      "Audit log entries written.",
	})
)

// Handler exposes the default Prometheus registry on a Fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
