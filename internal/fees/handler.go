package fees

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"marketplace-backend/internal/apperr"
	"marketplace-backend/internal/auth"
	"marketplace-backend/internal/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func parseID(raw, name string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Validation("%s must be a positive integer", name)
	}
	return uint(v), nil
}

// POST /api/fees
func CreateFeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body createFeeBody
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}
		in, err := body.toInput()
		if err != nil {
			return response.Fail(c, err)
		}

		fee, err := svc.CreateFeeTree(auth.RequestContext(c), in)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee created", fee)
	}
}

// PATCH /api/fees
func UpdateFeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body updateFeeBody
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}
		in, err := body.toInput()
		if err != nil {
			return response.Fail(c, err)
		}

		res, err := svc.UpdateFeeTree(auth.RequestContext(c), in)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee updated", res)
	}
}

// PATCH /api/fees/detail
// feeDetailId names the pairing whose vendor/consumer details change.
func PatchDetailHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body patchDetailBody
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}
		in, err := body.toInput()
		if err != nil {
			return response.Fail(c, err)
		}

		pairing, err := svc.UpdatePairDetails(auth.RequestContext(c), in)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee detail updated", pairing)
	}
}

// GET /api/fees?page=1&limit=10&searchTerm=ship
// sort is accepted but results are always newest first.
func ListFeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := svc.ListFees(c.UserContext(), ListQuery{
			Page:       c.QueryInt("page", defaultPage),
			PageSize:   c.QueryInt("limit", defaultPageSize),
			SearchTerm: c.Query("searchTerm"),
		})
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fees fetched", page)
	}
}

// GET /api/fees/one?feeId=1
func GetFeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Query("feeId"), "feeId")
		if err != nil {
			return response.Fail(c, err)
		}
		fee, err := svc.GetFee(c.UserContext(), id)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee fetched", fee)
	}
}

// DELETE /api/fees/:feeId
func DeleteFeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("feeId"), "feeId")
		if err != nil {
			return response.Fail(c, err)
		}
		res, err := svc.DeleteFeeTree(auth.RequestContext(c), id)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee deleted", res)
	}
}

// DELETE /api/fees/pairing/:id
func DeletePairingHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("id"), "id")
		if err != nil {
			return response.Fail(c, err)
		}
		res, err := svc.DeletePairing(auth.RequestContext(c), id)
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Fee pairing deleted", res)
	}
}

// POST /api/fees/categories
func AddCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body addCategoriesBody
		if err := c.BodyParser(&body); err != nil {
			return response.Fail(c, apperr.Validation("invalid request body"))
		}

		res, err := svc.AddCategories(auth.RequestContext(c), body.FeeID, body.entries())
		if err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Categories added", res)
	}
}

// DELETE /api/fees/categories/:id
func RemoveCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c.Params("id"), "id")
		if err != nil {
			return response.Fail(c, err)
		}
		if err := svc.RemoveCategory(auth.RequestContext(c), id); err != nil {
			return response.Fail(c, err)
		}
		return response.OK(c, "Category removed", nil)
	}
}

// GET /api/fees/export
func ExportFeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := svc.ExportFees(c.UserContext(), &buf); err != nil {
			return response.Fail(c, err)
		}

		c.Attachment(ExportFileName(time.Now().Format("2006-01-02")))
		c.Set(fiber.HeaderContentType, xlsxContentType)
		return c.Send(buf.Bytes())
	}
}
