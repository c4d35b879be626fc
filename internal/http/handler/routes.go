package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"financeapi/internal/auth"
	"financeapi/internal/http/middleware"
	"financeapi/internal/marketdata"
	"financeapi/internal/model"
	"financeapi/internal/service"
)

// Services groups the use cases served over HTTP.
type Services struct {
	Auth          auth.Service
	Accounts      service.AccountService
	Cards         service.CardService
	Debts         service.DebtService
	Subscriptions service.SubscriptionService
	Movements     service.MovementService
	Funds         service.FundService
	Config        service.UserConfigService
	Reports       service.ReportService
	Data          service.DataService
	Market        marketdata.Provider
}

// RegisterRoutes wires the HTTP routes onto app. Everything under /api except
// register and login requires a session.
func RegisterRoutes(app *fiber.App, db *sql.DB, s Services, cookie CookieOptions) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(s.Auth))
	authGroup.Post("/login", Login(s.Auth, cookie))

	private := api.Group("", middleware.RequireSession(s.Auth, cookie.Name))
	private.Get("/auth/session", Session(s.Auth))
	private.Post("/auth/logout", Logout(cookie))

	registerRecords(private.Group("/accounts"), s.Accounts)
	registerRecords(private.Group("/cards"), s.Cards)
	registerRecords(private.Group("/subscriptions"), s.Subscriptions)
	registerRecords(private.Group("/movements"), s.Movements)

	debts := private.Group("/debts")
	registerRecords[service.DebtInput, model.Debt](debts, s.Debts)
	debts.Post("/:id/payments", RecordPayment(s.Debts))

	funds := private.Group("/funds")
	registerRecords[service.FundInput, model.Fund](funds, s.Funds)
	funds.Post("/:id/refresh", RefreshFund(s.Funds))

	private.Get("/config", GetConfig(s.Config))
	private.Put("/config", SaveConfig(s.Config))
	private.Get("/dashboard", Dashboard(s.Reports))
	private.Get("/reports", Report(s.Reports))

	private.Get("/market/quote", Quote(s.Market))
	private.Get("/market/rate", ExchangeRate(s.Market))

	private.Post("/export", Export(s.Data))
	private.Get("/export/:name", DownloadExport(s.Data))
	private.Delete("/data", ResetData(s.Data))
}

func registerRecords[In any, T any](r fiber.Router, svc service.CRUDService[T, In]) {
	r.Get("/", ListRecords(svc))
	r.Post("/", CreateRecord(svc))
	r.Get("/:id", GetRecord(svc))
	r.Put("/:id", UpdateRecord(svc))
	r.Delete("/:id", DeleteRecord(svc))
}
