package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"financeapi/internal/logger"
	"financeapi/internal/marketdata"
	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// refreshConcurrency bounds the quote requests of one RefreshPrices call.
const refreshConcurrency = 4

// PositionInput is one holding in a fund body. A missing ID is generated.
type PositionInput struct {
	ID             *string          `json:"id"`
	Symbol         string           `json:"symbol"`
	Name           string           `json:"name"`
	Quantity       *decimal.Decimal `json:"quantity"`
	Price          *decimal.Decimal `json:"price"`
	Currency       string           `json:"currency"`
	Location       string           `json:"location"`
	InvestmentType string           `json:"investment_type"`
	PriceSource    string           `json:"price_source"`
}

// FundInput is the create/update body of a fund. CurrentAmount is ignored when
// positions are present; it is then derived from them.
type FundInput struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Type          string           `json:"type"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	Currency      string           `json:"currency"`
	TargetDate    *string          `json:"target_date"`
	Status        string           `json:"status"`
	AutoSync      bool             `json:"auto_sync"`
	Positions     []PositionInput  `json:"positions"`
}

type FundService interface {
	CRUDService[model.Fund, FundInput]
	RefreshPrices(ctx context.Context, userID, id string) (*model.Fund, error)
}

type fundService struct {
	crudService[model.Fund, FundInput]
	market marketdata.Provider
}

func NewFundService(repo repository.FundRepository, market marketdata.Provider) FundService {
	s := &fundService{market: market}
	s.crudService = crudService[model.Fund, FundInput]{
		repo:  repo,
		build: buildFund,
		meta:  func(f *model.Fund) *model.Meta { return &f.Meta },
	}
	return s
}

func buildFund(_ context.Context, _ string, existing *model.Fund, in FundInput) (*model.Fund, error) {
	v := validation.New()
	f := &model.Fund{
		Name:         v.Required("name", in.Name, 100),
		Description:  v.Optional("description", in.Description, 500),
		Type:         model.FundType(orDefault(in.Type, string(model.FundTraditional))),
		TargetAmount: v.Amount("target_amount", in.TargetAmount, false),
		Currency:     v.Currency("currency", in.Currency),
		TargetDate:   v.OptionalDate("target_date", in.TargetDate),
		Status:       model.FundStatus(orDefault(in.Status, string(model.FundInProgress))),
		AutoSync:     in.AutoSync,
		Positions:    model.Positions{},
	}
	v.Enum("type", string(f.Type), f.Type.Valid())
	v.Enum("status", string(f.Status), f.Status.Valid())
	if in.CurrentAmount != nil {
		f.CurrentAmount = v.Amount("current_amount", in.CurrentAmount, false)
	}

	previous := map[string]model.Position{}
	if existing != nil {
		for _, p := range existing.Positions {
			previous[p.ID] = p
		}
	}
	for i, pi := range in.Positions {
		f.Positions = append(f.Positions, buildPosition(v, fmt.Sprintf("positions[%d]", i), pi, previous))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	f.SyncCurrentAmount()
	return f, nil
}

func buildPosition(v *validation.Validator, prefix string, in PositionInput, previous map[string]model.Position) model.Position {
	p := model.Position{
		Name:           v.Required(prefix+".name", in.Name, 100),
		Quantity:       v.Amount(prefix+".quantity", in.Quantity, false),
		Price:          v.Amount(prefix+".price", in.Price, false),
		Currency:       v.Currency(prefix+".currency", in.Currency),
		Location:       validation.Clean(in.Location),
		InvestmentType: model.InvestmentType(in.InvestmentType),
		PriceSource:    model.PriceSource(orDefault(in.PriceSource, string(model.PriceManual))),
	}
	if sym := v.Required(prefix+".symbol", in.Symbol, 20); sym != "" {
		norm, err := marketdata.NormalizeSymbol(sym)
		v.Check(err == nil, prefix+".symbol", "is not a valid ticker")
		p.Symbol = norm
	}
	v.Enum(prefix+".investment_type", in.InvestmentType, p.InvestmentType.Valid())
	v.Enum(prefix+".price_source", string(p.PriceSource), p.PriceSource.Valid())

	if id := v.Ref(in.ID); id != nil {
		p.ID = *id
		if old, ok := previous[p.ID]; ok && old.Price.Equal(p.Price) {
			p.LastUpdated = old.LastUpdated
		}
	} else {
		p.ID = uuid.NewString()
	}
	return p
}

// RefreshPrices requotes every position priced by a market source and stores the new
// total. A position whose quote fails keeps its previous price.
func (s *fundService) RefreshPrices(ctx context.Context, userID, id string) (*model.Fund, error) {
	fund, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)
	for i := range fund.Positions {
		kind, ok := quoteKind(fund.Positions[i].PriceSource)
		if !ok {
			continue
		}
		g.Go(func() error {
			p := fund.Positions[i]
			q, err := s.market.Quote(gctx, kind, p.Symbol, p.Currency)
			if err != nil {
				log.Warn("price refresh failed", "fund_id", fund.ID, "symbol", p.Symbol, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			fund.Positions[i].Price = q.Price
			fetched := q.FetchedAt
			fund.Positions[i].LastUpdated = &fetched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fund.SyncCurrentAmount()
	out, err := s.repo.Upsert(ctx, userID, fund)
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func quoteKind(src model.PriceSource) (marketdata.Kind, bool) {
	switch src {
	case model.PriceYahoo:
		return marketdata.KindStock, true
	case model.PriceCoinMarketCap:
		return marketdata.KindCrypto, true
	default:
		return "", false
	}
}
