package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/http/middleware"
	"financeapi/internal/service"
)

// badRequest is a client error detected while parsing a request.
type badRequest struct {
	code    string
	message string
}

func (b *badRequest) write(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, b.code, b.message)
}

// listQuery reads limit/offset and at most one index filter from the query string.
func listQuery(c *fiber.Ctx) (service.ListQuery, *badRequest) {
	q := service.ListQuery{Limit: service.DefaultLimit}
	for key, value := range c.Queries() {
		switch key {
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return q, &badRequest{"INVALID_LIMIT", "limit must be a positive integer"}
			}
			q.Limit = min(n, service.MaxLimit)
		case "offset":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return q, &badRequest{"INVALID_OFFSET", "offset must be a non-negative integer"}
			}
			q.Offset = n
		default:
			if q.Index != "" {
				return q, &badRequest{"INVALID_FILTER", "only one filter is supported"}
			}
			q.Index, q.Value = key, value
		}
	}
	return q, nil
}

// ListRecords godoc
// @Summary List records
// @Description Pages through one collection. Any query parameter other than limit and offset filters on that index.
// @Tags records
// @Produce json
// @Param collection path string true "accounts, cards, debts, subscriptions, movements or funds"
// @Param limit query int false "Limit (default 20, max 100)"
// @Param offset query int false "Offset (default 0)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Router /api/{collection} [get]
func ListRecords[T any, In any](svc service.CRUDService[T, In]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, bad := listQuery(c)
		if bad != nil {
			return bad.write(c)
		}
		res, err := svc.List(c.UserContext(), middleware.UserID(c), q)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"data": res.Items,
			"meta": fiber.Map{
				"limit":  q.Limit,
				"offset": q.Offset,
				"total":  res.Total,
			},
		})
	}
}

// GetRecord returns one record of the collection by id.
func GetRecord[T any, In any](svc service.CRUDService[T, In]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(rec)
	}
}

// CreateRecord godoc
// @Summary Create a record
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Router /api/{collection} [post]
func CreateRecord[T any, In any](svc service.CRUDService[T, In]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in In
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		rec, err := svc.Save(c.UserContext(), middleware.UserID(c), "", in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// UpdateRecord replaces the record with the given id, creating it when absent.
func UpdateRecord[T any, In any](svc service.CRUDService[T, In]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in In
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		rec, err := svc.Save(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(rec)
	}
}

// DeleteRecord godoc
// @Summary Delete a record
// @Tags records
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Router /api/{collection}/{id} [delete]
func DeleteRecord[T any, In any](svc service.CRUDService[T, In]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
