package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/marketdata"
	"financeapi/internal/model"
)

func currencyParam(c *fiber.Ctx, key string, def model.Currency) (model.Currency, bool) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query(key)))
	if raw == "" {
		return def, def != ""
	}
	cur := model.Currency(raw)
	return cur, cur.Valid()
}

// Quote godoc
// @Summary Latest price of a stock or crypto symbol
// @Tags market
// @Produce json
// @Param symbol query string true "Ticker symbol"
// @Param kind query string false "stock or crypto" default(stock)
// @Param currency query string false "Quote currency" default(USD)
// @Success 200 {object} marketdata.Quote
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/market/quote [get]
func Quote(p marketdata.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind := marketdata.Kind(c.Query("kind", string(marketdata.KindStock)))
		if !kind.Valid() {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be stock or crypto")
		}
		cur, ok := currencyParam(c, "currency", model.CurrencyUSD)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CURRENCY", "unsupported currency")
		}
		q, err := p.Quote(c.UserContext(), kind, c.Query("symbol"), cur)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(q)
	}
}

// ExchangeRate godoc
// @Summary Exchange rate between two currencies
// @Tags market
// @Produce json
// @Param from query string true "Base currency"
// @Param to query string true "Target currency"
// @Success 200 {object} marketdata.Rate
// @Failure 400 {object} errorPayload
// @Router /api/market/rate [get]
func ExchangeRate(p marketdata.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, okFrom := currencyParam(c, "from", "")
		to, okTo := currencyParam(c, "to", "")
		if !okFrom || !okTo {
			return writeError(c, fiber.StatusBadRequest, "INVALID_CURRENCY", "from and to must be supported currencies")
		}
		r, err := p.Rate(c.UserContext(), from, to)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(r)
	}
}
