package database_test

import (
	"context"
	"errors"
	"testing"

	"marketplace-backend/internal/database"
	"marketplace-backend/internal/database/dbtest"
	"marketplace-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransactionCommits(t *testing.T) {
	db := dbtest.Open(t)

	err := database.Transaction(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&models.Category{Name: "Books"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := dbtest.Open(t)
	boom := errors.New("boom")

	err := database.Transaction(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Category{Name: "Books"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransactionRollsBackOnPanic(t *testing.T) {
	db := dbtest.Open(t)

	assert.Panics(t, func() {
		_ = database.Transaction(context.Background(), db, func(tx *gorm.DB) error {
			tx.Create(&models.Category{Name: "Books"})
			panic("unexpected")
		})
	})

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}
