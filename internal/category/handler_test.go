package category

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/database/dbtest"
	"marketplace-backend/internal/models"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingInvalidator struct {
	feeIDs []uint
}

func (r *recordingInvalidator) InvalidateFees(_ context.Context, feeIDs ...uint) {
	r.feeIDs = append(r.feeIDs, feeIDs...)
}

func newApp(db *gorm.DB) *fiber.App {
	return newAppWith(db, &recordingInvalidator{})
}

func newAppWith(db *gorm.DB, fees FeeInvalidator) *fiber.App {
	app := fiber.New()
	app.Get("/categories", ListHandler(db))
	app.Post("/categories", CreateHandler(db))
	app.Put("/categories/:id", UpdateHandler(db, fees))
	app.Delete("/categories/:id", DeleteHandler(db))
	return app
}

func call(t *testing.T, app *fiber.App, method, target, body string) response.Envelope {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env response.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestCategoryLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	app := newApp(db)

	env := call(t, app, "POST", "/categories", `{"name":" Books "}`)
	require.True(t, env.Status, env.Message)

	env = call(t, app, "POST", "/categories", `{"name":"Books"}`)
	assert.False(t, env.Status)
	assert.Equal(t, apperr.KindConflict, env.Error.Kind)

	env = call(t, app, "POST", "/categories", `{"name":"  "}`)
	assert.Equal(t, apperr.KindValidation, env.Error.Kind)

	var cat models.Category
	require.NoError(t, db.First(&cat, "name = ?", "Books").Error)

	env = call(t, app, "PUT", "/categories/"+itoa(cat.ID), `{"name":"Novels"}`)
	require.True(t, env.Status)

	env = call(t, app, "GET", "/categories", "")
	require.True(t, env.Status)
	items := env.Data.([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Novels", items[0].(map[string]interface{})["name"])

	env = call(t, app, "DELETE", "/categories/"+itoa(cat.ID), "")
	require.True(t, env.Status)

	env = call(t, app, "DELETE", "/categories/"+itoa(cat.ID), "")
	assert.Equal(t, apperr.KindNotFound, env.Error.Kind)
}

func TestDeleteRefusesLinkedCategory(t *testing.T) {
	db := dbtest.Open(t)
	app := newApp(db)

	cat := models.Category{Name: "Electronics"}
	require.NoError(t, db.Create(&cat).Error)
	fee := models.Fee{Name: "Fee", Type: models.FeeTypeGlobal, Status: models.FeeStatusActive}
	require.NoError(t, db.Create(&fee).Error)
	require.NoError(t, db.Create(&models.FeeCategory{FeeID: fee.ID, CategoryID: cat.ID}).Error)

	env := call(t, app, "DELETE", "/categories/"+itoa(cat.ID), "")
	assert.False(t, env.Status)
	assert.Equal(t, apperr.KindConflict, env.Error.Kind)
}

func TestRenameInvalidatesLinkedFees(t *testing.T) {
	db := dbtest.Open(t)
	fees := &recordingInvalidator{}
	app := newAppWith(db, fees)

	cat := models.Category{Name: "Electronics"}
	other := models.Category{Name: "Garden"}
	require.NoError(t, db.Create(&cat).Error)
	require.NoError(t, db.Create(&other).Error)
	linked := models.Fee{Name: "Linked", Type: models.FeeTypeNonGlobal, Status: models.FeeStatusActive}
	unlinked := models.Fee{Name: "Unlinked", Type: models.FeeTypeNonGlobal, Status: models.FeeStatusActive}
	require.NoError(t, db.Create(&linked).Error)
	require.NoError(t, db.Create(&unlinked).Error)
	require.NoError(t, db.Create(&models.FeeCategory{FeeID: linked.ID, CategoryID: cat.ID}).Error)
	require.NoError(t, db.Create(&models.FeeCategory{FeeID: unlinked.ID, CategoryID: other.ID}).Error)

	env := call(t, app, "PUT", "/categories/"+itoa(cat.ID), `{"name":"Gadgets"}`)
	require.True(t, env.Status, env.Message)
	assert.Equal(t, []uint{linked.ID}, fees.feeIDs)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
