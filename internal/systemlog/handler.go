package systemlog

import (
	"strconv"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/admin/system-logs?entity_type=fee&entity_id=1&admin_id=1&limit=50
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{EntityType: c.Query("entity_type")}

		for key, dst := range map[string]*uint{"entity_id": &f.EntityID, "admin_id": &f.AdminID} {
			if s := c.Query(key); s != "" {
				v, err := strconv.ParseUint(s, 10, 64)
				if err != nil {
					return response.Fail(c, apperr.Validation("%s must be a positive integer", key))
				}
				*dst = uint(v)
			}
		}
		f.Limit = c.QueryInt("limit", 100)

		logs, err := List(c.UserContext(), db, f)
		if err != nil {
			return response.Fail(c, apperr.FromDB(err, "could not list system logs"))
		}
		return response.OK(c, "System logs fetched", logs)
	}
}
