package audit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"pos-backend/internal/database"
	"pos-backend/internal/models"
	"pos-backend/internal/pagination"
)

type LogResponse struct {
	ID        uint   `json:"id"`
	UserID    *uint  `json:"user_id"`
	ActorName string `json:"actor_name"`
	ActorRole string `json:"actor_role"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

func toResponse(l models.AuditLog) LogResponse {
	resp := LogResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		ActorName: "System",
		Action:    l.Action,
		Timestamp: l.CreatedAt.Format(time.RFC3339),
	}
	if l.User != nil {
		resp.ActorName = l.User.Name
		resp.ActorRole = string(l.User.Role)
	}
	return resp
}

// GET /audit-logs?page=&per_page=&user_id=
// Newest entries first.
func ListLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := pagination.Parse(c)

		dbq := database.DB.Model(&models.AuditLog{})
		if s := c.Query("user_id"); s != "" {
			var uid uint
			if _, err := fmt.Sscan(s, &uid); err != nil || uid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "user_id is invalid")
			}
			dbq = dbq.Where("user_id = ?", uid)
		}

		var total int64
		if err := dbq.Count(&total).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not count audit logs")
		}

		var logs []models.AuditLog
		if err := dbq.Preload("User").
			Order("created_at DESC, id DESC").
			Limit(p.PerPage).Offset(p.Offset()).
			Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list audit logs")
		}

		resp := make([]LogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}

		return c.JSON(p.Wrap(resp, len(resp), total))
	}
}

// GET /audit-logs/:id
func GetLogHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var entry models.AuditLog
		if err := database.DB.Preload("User").First(&entry, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Audit log not found")
		}

		return c.JSON(toResponse(entry))
	}
}
