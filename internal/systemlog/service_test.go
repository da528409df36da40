package systemlog

import (
	"context"
	"testing"

	"marketplace-backend/internal/database/dbtest"
	"marketplace-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecordsActor(t *testing.T) {
	db := dbtest.Open(t)
	ctx := WithActor(context.Background(), Actor{AdminID: 4, AdminName: "Ops", RequestID: "req-1"})

	err := Write(ctx, db, Entry{
		EntityType:  "fee",
		EntityID:    9,
		Action:      models.LogActionCreate,
		Description: "fee created",
		After:       map[string]string{"name": "Shipping Fee"},
	})
	require.NoError(t, err)

	var row models.SystemLog
	require.NoError(t, db.First(&row).Error)
	require.NotNil(t, row.AdminID)
	assert.EqualValues(t, 4, *row.AdminID)
	assert.Equal(t, "Ops", row.AdminName)
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, "null", row.BeforeData)
	assert.JSONEq(t, `{"name":"Shipping Fee"}`, row.AfterData)
}

func TestWriteWithoutActor(t *testing.T) {
	db := dbtest.Open(t)

	require.NoError(t, Write(context.Background(), db, Entry{EntityType: "fee", EntityID: 1, Action: models.LogActionDelete}))

	var row models.SystemLog
	require.NoError(t, db.First(&row).Error)
	assert.Nil(t, row.AdminID)
}

func TestListFilters(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	for _, e := range []Entry{
		{EntityType: "fee", EntityID: 1, Action: models.LogActionCreate},
		{EntityType: "fee", EntityID: 2, Action: models.LogActionCreate},
		{EntityType: "fee_pairing", EntityID: 1, Action: models.LogActionDelete},
	} {
		require.NoError(t, Write(ctx, db, e))
	}

	logs, err := List(ctx, db, Filter{EntityType: "fee"})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.EqualValues(t, 2, logs[0].EntityID, "newest first")

	logs, err = List(ctx, db, Filter{EntityType: "fee", EntityID: 1})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
