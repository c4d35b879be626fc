package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"financeapi/internal/logger"
	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/storage"
	"financeapi/internal/validation"
)

const (
	exportVersion = 1
	// ExportURLExpiry is how long a pre-signed export URL stays valid.
	ExportURLExpiry = 15 * time.Minute
)

var exportNamePattern = regexp.MustCompile(`^finance-\d{8}T\d{6}Z\.json$`)

// Snapshot is the JSON document written by Export.
type Snapshot struct {
	Version       int                  `json:"version"`
	ExportedAt    time.Time            `json:"exported_at"`
	Config        model.UserConfig     `json:"config"`
	Accounts      []model.BankAccount  `json:"accounts"`
	Cards         []model.Card         `json:"cards"`
	Debts         []model.Debt         `json:"debts"`
	Subscriptions []model.Subscription `json:"subscriptions"`
	Movements     []model.Movement     `json:"movements"`
	Funds         []model.Fund         `json:"funds"`
}

// ExportResult locates a stored snapshot.
type ExportResult struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Repositories groups the record stores of every collection.
type Repositories struct {
	Accounts      repository.AccountRepository
	Cards         repository.CardRepository
	Debts         repository.DebtRepository
	Subscriptions repository.SubscriptionRepository
	Movements     repository.MovementRepository
	Funds         repository.FundRepository
}

type DataService interface {
	Export(ctx context.Context, userID string) (*ExportResult, error)
	Download(ctx context.Context, userID, name string) (io.ReadCloser, storage.ObjectInfo, error)
	Reset(ctx context.Context, userID string) error
}

type dataService struct {
	repos   Repositories
	config  UserConfigService
	storage storage.Storage
	tx      repository.TxManager
}

// NewDataService wires export and reset. store may be nil, in which case exports
// fail with ErrStorageUnavailable.
func NewDataService(repos Repositories, config UserConfigService, store storage.Storage, tx repository.TxManager) DataService {
	return &dataService{repos: repos, config: config, storage: store, tx: tx}
}

// Export writes a snapshot of every collection to object storage and returns a
// pre-signed URL for it.
func (s *dataService) Export(ctx context.Context, userID string) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	now := timeNow()
	snap, err := s.snapshot(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	name := "finance-" + now.Format("20060102T150405Z") + ".json"
	key := storage.ExportKey(userID, name)
	info, err := s.storage.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"user-id": userID},
	})
	if err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}
	url, err := s.storage.PresignGet(ctx, key, ExportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign snapshot: %w", err)
	}
	logger.FromContext(ctx).Info("data exported", "user_id", userID, "key", key, "size", info.Size)
	return &ExportResult{Name: name, Size: info.Size, URL: url, ExpiresAt: now.Add(ExportURLExpiry)}, nil
}

// Download streams a previously exported snapshot of the user.
func (s *dataService) Download(ctx context.Context, userID, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.storage == nil {
		return nil, storage.ObjectInfo{}, ErrStorageUnavailable
	}
	if !exportNamePattern.MatchString(name) {
		return nil, storage.ObjectInfo{}, validation.Errors{"name": "is not an export name"}
	}
	rc, info, err := s.storage.Get(ctx, storage.ExportKey(userID, name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, err
	}
	return rc, info, nil
}

// Reset removes every record of the user in one transaction. The user and their
// settings are kept.
func (s *dataService) Reset(ctx context.Context, userID string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		clears := []struct {
			name  string
			clear func(context.Context, string) error
		}{
			{"movements", s.repos.Movements.Clear},
			{"subscriptions", s.repos.Subscriptions.Clear},
			{"debts", s.repos.Debts.Clear},
			{"cards", s.repos.Cards.Clear},
			{"funds", s.repos.Funds.Clear},
			{"accounts", s.repos.Accounts.Clear},
		}
		for _, c := range clears {
			if err := c.clear(ctx, userID); err != nil {
				return fmt.Errorf("clear %s: %w", c.name, err)
			}
		}
		logger.FromContext(ctx).Info("data reset", "user_id", userID)
		return nil
	})
}

func (s *dataService) snapshot(ctx context.Context, userID string, now time.Time) (*Snapshot, error) {
	snap := &Snapshot{Version: exportVersion, ExportedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := s.config.Get(gctx, userID)
		if err != nil {
			return err
		}
		snap.Config = *cfg
		return nil
	})
	g.Go(func() (err error) { snap.Accounts, err = s.repos.Accounts.GetAll(gctx, userID); return })
	g.Go(func() (err error) { snap.Cards, err = s.repos.Cards.GetAll(gctx, userID); return })
	g.Go(func() (err error) { snap.Debts, err = s.repos.Debts.GetAll(gctx, userID); return })
	g.Go(func() (err error) { snap.Subscriptions, err = s.repos.Subscriptions.GetAll(gctx, userID); return })
	g.Go(func() (err error) { snap.Movements, err = s.repos.Movements.GetAll(gctx, userID); return })
	g.Go(func() (err error) { snap.Funds, err = s.repos.Funds.GetAll(gctx, userID); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
