package handler

import (
	"github.com/gofiber/fiber/v2"

	"financeapi/internal/http/middleware"
	"financeapi/internal/service"
)

// Export godoc
// @Summary Export all records to object storage
// @Description Writes a JSON snapshot and returns a presigned download URL.
// @Tags data
// @Produce json
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} errorPayload
// @Router /api/export [post]
func Export(svc service.DataService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Export(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// DownloadExport streams a previously written snapshot.
func DownloadExport(svc service.DataService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		body, info, err := svc.Download(c.UserContext(), middleware.UserID(c), name)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		size := -1
		if info.Size > 0 {
			size = int(info.Size)
		}
		return c.Status(fiber.StatusOK).SendStream(body, size)
	}
}

// ResetData godoc
// @Summary Delete every record of the user
// @Description The user configuration is kept.
// @Tags data
// @Success 204
// @Router /api/data [delete]
func ResetData(svc service.DataService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Reset(c.UserContext(), middleware.UserID(c)); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
