package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/models"
	"pos-backend/internal/testutil"
)

func TestRecord(t *testing.T) {
	t.Run("attributes an actor", func(t *testing.T) {
		db := testutil.SetupDB(t)
		admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)

		require.NoError(t, Record(db, &admin.ID, "Created menu #1 (Adobo, 120.00)"))

		var entry models.AuditLog
		require.NoError(t, db.Preload("User").First(&entry).Error)
		require.NotNil(t, entry.UserID)
		assert.Equal(t, admin.ID, *entry.UserID)
		assert.Equal(t, "Created menu #1 (Adobo, 120.00)", entry.Action)
		assert.WithinDuration(t, time.Now(), entry.CreatedAt, 5*time.Second)
	})

	t.Run("nil actor is a system entry", func(t *testing.T) {
		db := testutil.SetupDB(t)

		require.NoError(t, Record(db, nil, "Registered customer #1 (table 5, ref QR-5-1)"))

		var entry models.AuditLog
		require.NoError(t, db.First(&entry).Error)
		assert.Nil(t, entry.UserID)
	})

	t.Run("entries accumulate, none replaced", func(t *testing.T) {
		db := testutil.SetupDB(t)

		for i := 0; i < 4; i++ {
			require.NoError(t, Record(db, nil, "entry"))
		}

		var n int64
		require.NoError(t, db.Model(&models.AuditLog{}).Count(&n).Error)
		assert.Equal(t, int64(4), n)
	})
}

func TestFieldDiff(t *testing.T) {
	diff := FieldDiff(map[string]any{
		"status":     models.OrderStatusReady,
		"order_type": models.OrderTypeTakeOut,
	})
	// keys come out sorted, so the serialization is stable
	assert.Equal(t, `{"order_type":"take-out","status":"ready"}`, diff)

	assert.Equal(t, `{}`, FieldDiff(map[string]any{}))
}
