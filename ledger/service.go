// Package ledger holds the transfer core of CashPilot: request validation,
// existence and balance checks, the transactional writer, transfer history
// and the category lifecycle.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
)

// AccountRef is what the existence check needs to know about an account.
type AccountRef struct {
	ID     int64
	UserID int64
	Active bool
}

// Tx is the set of writes available inside the writer's database transaction.
type Tx interface {
	// LockBalances locks the given accounts for update, in ascending id
	// order, and returns their current balances.
	LockBalances(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
	InsertTransfer(ctx context.Context, t models.Transfer) (models.Transfer, error)
	AddToBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error
}

// TransferStore persists transfers.
type TransferStore interface {
	// FindAccounts looks up all ids in one round trip. Missing ids are absent
	// from the result.
	FindAccounts(ctx context.Context, ids []int64) (map[int64]AccountRef, error)
	UserExists(ctx context.Context, id int64) (bool, error)
	// CategoryVisible reports whether the category exists and is either
	// global or owned by userID.
	CategoryVisible(ctx context.Context, id, userID int64) (bool, error)
	// WithTx runs fn in a database transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(Tx) error) error
	ListTransfers(ctx context.Context, userID int64) ([]models.TransferDetail, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	// CategoryTaken reports whether description (case-insensitive, trimmed)
	// is already used by a global category or one of userID's, ignoring
	// excludeID.
	CategoryTaken(ctx context.Context, userID int64, description string, excludeID int64) (bool, error)
	CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error)
	UpdateCategory(ctx context.Context, id int64, description string) (models.Category, error)
	CountCategoryTransfers(ctx context.Context, id int64) (int, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Store is everything the Service needs from persistence.
type Store interface {
	TransferStore
	CategoryStore
}

// Service runs transfers and category operations against a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger.With("component", "ledger")}
}

// Transfer validates in, checks every referenced entity, and then atomically
// records the transfer and applies its balance deltas.
func (s *Service) Transfer(ctx context.Context, in models.TransferInput) (models.Transfer, error) {
	req, err := NewRequest(in)
	if err != nil {
		return models.Transfer{}, err
	}
	if err := s.checkExistence(ctx, req); err != nil {
		return models.Transfer{}, err
	}

	var created models.Transfer
	err = s.store.WithTx(ctx, func(tx Tx) error {
		balances, err := tx.LockBalances(ctx, req.AccountIDs())
		if err != nil {
			return fmt.Errorf("locking accounts: %w", err)
		}
		if err := checkLocked(req, balances); err != nil {
			return err
		}
		if req.Kind.Debits() {
			if err := checkFunds(req, balances); err != nil {
				return err
			}
		}
		if err := checkRange(req, balances); err != nil {
			return err
		}

		created, err = tx.InsertTransfer(ctx, req.Transfer())
		if err != nil {
			return fmt.Errorf("inserting transfer: %w", err)
		}
		for _, d := range req.Deltas() {
			if err := tx.AddToBalance(ctx, d.AccountID, d.Amount); err != nil {
				return fmt.Errorf("updating balance of account %d: %w", d.AccountID, err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Transfer{}, err
	}

	s.logger.Info("transfer completed",
		"id", created.ID, "kind", created.Kind, "user_id", created.UserID,
		"amount", created.Amount.StringFixed(2), "fee", created.Fee.StringFixed(2))
	return created, nil
}

// checkExistence confirms the user, the accounts (one batched lookup) and,
// for payments, the category. It runs before any transaction is opened.
func (s *Service) checkExistence(ctx context.Context, req Request) error {
	ok, err := s.store.UserExists(ctx, req.UserID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if !ok {
		return &NotFoundError{Entity: "user", ID: req.UserID}
	}

	accounts, err := s.store.FindAccounts(ctx, req.AccountIDs())
	if err != nil {
		return fmt.Errorf("looking up accounts: %w", err)
	}
	if req.Source != nil {
		a, ok := accounts[*req.Source]
		if !ok || !a.Active || a.UserID != req.UserID {
			return &NotFoundError{Entity: "source account", ID: *req.Source}
		}
	}
	if req.Destination != nil {
		a, ok := accounts[*req.Destination]
		if !ok || !a.Active {
			return &NotFoundError{Entity: "destination account", ID: *req.Destination}
		}
	}

	if req.CategoryID != nil {
		ok, err := s.store.CategoryVisible(ctx, *req.CategoryID, req.UserID)
		if err != nil {
			return fmt.Errorf("looking up category: %w", err)
		}
		if !ok {
			return &NotFoundError{Entity: "category", ID: *req.CategoryID}
		}
	}
	return nil
}

// checkLocked fails when an account was deactivated after checkExistence saw it.
func checkLocked(req Request, balances map[int64]decimal.Decimal) error {
	if req.Source != nil {
		if _, ok := balances[*req.Source]; !ok {
			return &NotFoundError{Entity: "source account", ID: *req.Source}
		}
	}
	if req.Destination != nil {
		if _, ok := balances[*req.Destination]; !ok {
			return &NotFoundError{Entity: "destination account", ID: *req.Destination}
		}
	}
	return nil
}

// checkRange rejects credits that would push a balance past what the
// saldo column can hold.
func checkRange(req Request, balances map[int64]decimal.Decimal) error {
	for _, d := range req.Deltas() {
		if !models.ValidAmount(balances[d.AccountID].Add(d.Amount)) {
			return &ValidationError{
				Fields:  []string{"monto"},
				Message: fmt.Sprintf("balance of account %d would exceed the supported range", d.AccountID),
			}
		}
	}
	return nil
}

func checkFunds(req Request, balances map[int64]decimal.Decimal) error {
	balance, ok := balances[*req.Source]
	if !ok {
		return &NotFoundError{Entity: "source account", ID: *req.Source}
	}
	if balance.LessThan(req.Debit()) {
		return &InsufficientFundsError{AccountID: *req.Source, Balance: balance, Required: req.Debit()}
	}
	return nil
}

// BalanceDelta is a signed change to one account's balance.
type BalanceDelta struct {
	AccountID int64
	Amount    decimal.Decimal
}

// Deltas returns the balance changes the request applies, source first.
func (r Request) Deltas() []BalanceDelta {
	var deltas []BalanceDelta
	if r.Kind.Debits() {
		deltas = append(deltas, BalanceDelta{AccountID: *r.Source, Amount: r.Debit().Neg()})
	}
	if r.Kind == models.KindTransfer || r.Kind == models.KindReceive {
		deltas = append(deltas, BalanceDelta{AccountID: *r.Destination, Amount: r.Amount})
	}
	return deltas
}

// History returns every transfer userID initiated, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]models.TransferDetail, error) {
	if userID <= 0 {
		return nil, &ValidationError{Fields: []string{"id_usuario"}, Message: "missing or invalid fields"}
	}
	history, err := s.store.ListTransfers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	if history == nil {
		history = []models.TransferDetail{}
	}
	return history, nil
}

// Summary groups userID's payments in [from, to] by category.
func (s *Service) Summary(ctx context.Context, userID int64, from, to *time.Time) (models.Breakdown, error) {
	history, err := s.History(ctx, userID)
	if err != nil {
		return models.Breakdown{}, err
	}
	return Breakdown(history, from, to), nil
}
