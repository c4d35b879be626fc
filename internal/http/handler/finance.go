package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/http/middleware"
	"financeapi/internal/service"
)

// GetConfig godoc
// @Summary Get the user configuration
// @Description Returns defaults when the user has not saved a configuration yet.
// @Tags config
// @Produce json
// @Success 200 {object} model.UserConfig
// @Router /api/config [get]
func GetConfig(svc service.UserConfigService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, err := svc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(cfg)
	}
}

// SaveConfig godoc
// @Summary Save the user configuration
// @Tags config
// @Accept json
// @Produce json
// @Param body body service.ConfigInput true "Configuration"
// @Success 200 {object} model.UserConfig
// @Failure 400 {object} errorPayload
// @Router /api/config [put]
func SaveConfig(svc service.UserConfigService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ConfigInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		cfg, err := svc.Save(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(cfg)
	}
}

// Dashboard godoc
// @Summary Current month dashboard
// @Tags reports
// @Produce json
// @Success 200 {object} report.Dashboard
// @Router /api/dashboard [get]
func Dashboard(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Dashboard(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(d)
	}
}

// Report godoc
// @Summary Monthly report
// @Tags reports
// @Produce json
// @Param months query int false "Number of months (1-24)"
// @Success 200 {object} report.Report
// @Failure 400 {object} errorPayload
// @Router /api/reports [get]
func Report(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		months := 0
		if raw := c.Query("months"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_MONTHS", "months must be an integer")
			}
			months = n
		}
		r, err := svc.Report(c.UserContext(), middleware.UserID(c), months)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(r)
	}
}

// RecordPayment godoc
// @Summary Record a debt payment
// @Description Reduces the remaining amount and, when an account is given, books an expense movement.
// @Tags debts
// @Accept json
// @Produce json
// @Param id path string true "Debt ID"
// @Param body body service.PaymentInput true "Payment"
// @Success 201 {object} service.PaymentResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/debts/{id}/payments [post]
func RecordPayment(svc service.DebtService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.PaymentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}
		res, err := svc.RecordPayment(c.UserContext(), middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// RefreshFund godoc
// @Summary Refresh fund position prices
// @Tags funds
// @Produce json
// @Param id path string true "Fund ID"
// @Success 200 {object} model.Fund
// @Failure 404 {object} errorPayload
// @Router /api/funds/{id}/refresh [post]
func RefreshFund(svc service.FundService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := svc.RefreshPrices(c.UserContext(), middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(f)
	}
}
