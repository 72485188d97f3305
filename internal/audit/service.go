package audit

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pos-backend/internal/metrics"
	"pos-backend/internal/models"
)

// Record appends one audit entry. It runs on the caller's *gorm.DB, so a
// mutation and its audit row share one transaction: either both commit or
// neither does. actorID is nil for system-initiated actions.
func Record(tx *gorm.DB, actorID *uint, action string) error {
	entry := models.AuditLog{
		UserID: actorID,
		Action: action,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return errors.Wrap(err, "audit record")
	}
	metrics.AuditRecords.Inc()
	return nil
}

// FieldDiff serializes a changed-field map (field → new value) for update
// audit entries. Keys come out sorted, so the output is stable.
func FieldDiff(changes map[string]any) string {
	b, err := json.Marshal(changes)
	if err != nil {
		return fmt.Sprintf("%v", changes)
	}
	return string(b)
}
