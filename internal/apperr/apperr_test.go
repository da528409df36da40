package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsMatchesKind(t *testing.T) {
	err := NotFound("fee %d not found", 3)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "fee 3 not found", err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestFromDB(t *testing.T) {
	assert.NoError(t, FromDB(nil, "noop"))

	cases := []struct {
		name string
		err  error
		kind Kind
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound},
		{"duplicated key", gorm.ErrDuplicatedKey, KindConflict},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, KindConflict},
		{"postgres other", &pgconn.PgError{Code: "23503"}, KindPersistence},
		{"plain", errors.New("connection reset"), KindPersistence},
		{"already classified", Validation("bad"), KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromDB(tc.err, "op")
			assert.Equal(t, tc.kind, KindOf(got))
		})
	}
}

func TestPersistenceUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Persistence(cause, "could not save fee")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "could not save fee: disk full", err.Error())
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindPersistence, KindOf(errors.New("x")))
}
