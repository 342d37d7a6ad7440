// Package ledgertest provides an in-memory ledger.Store for tests. Its
// transactions snapshot balances and transfers and restore them on error,
// so rollback behavior can be asserted without PostgreSQL.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
)

var _ ledger.Store = (*Store)(nil)

type account struct {
	ref         ledger.AccountRef
	description string
	balance     decimal.Decimal
}

// Store is a goroutine-safe in-memory ledger.Store.
type Store struct {
	mu         sync.Mutex
	users      map[int64]bool
	accounts   map[int64]*account
	categories map[int64]models.Category
	transfers  []models.Transfer
	nextID     int64

	// FailBalanceUpdate, when set, is returned by AddToBalance after the
	// transfer row has been inserted.
	FailBalanceUpdate error
	// FindAccountsCalls counts batched account lookups.
	FindAccountsCalls int
	// Now stamps inserted transfers; defaults to time.Now.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		users:      map[int64]bool{},
		accounts:   map[int64]*account{},
		categories: map[int64]models.Category{},
		nextID:     1000,
		Now:        time.Now,
	}
}

func (s *Store) AddUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = true
}

// AddAccount registers an active account owned by userID.
func (s *Store) AddAccount(id, userID int64, balance string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &account{
		ref:         ledger.AccountRef{ID: id, UserID: userID, Active: true},
		description: fmt.Sprintf("Cuenta %d", id),
		balance:     decimal.RequireFromString(balance),
	}
}

func (s *Store) Deactivate(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id].ref.Active = false
}

// AddCategory registers a category; a nil owner makes it global.
func (s *Store) AddCategory(id int64, description string, owner *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[id] = models.Category{ID: id, Description: description, UserID: owner}
}

// AddTransfer appends a transfer row as-is, without touching balances.
func (s *Store) AddTransfer(t models.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
	}
	s.transfers = append(s.transfers, t)
}

func (s *Store) Balance(id int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].balance
}

func (s *Store) Transfers() []models.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Transfer(nil), s.transfers...)
}

func (s *Store) HasCategory(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.categories[id]
	return ok
}

func (s *Store) FindAccounts(_ context.Context, ids []int64) (map[int64]ledger.AccountRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FindAccountsCalls++
	out := map[int64]ledger.AccountRef{}
	for _, id := range ids {
		if a, ok := s.accounts[id]; ok {
			out[id] = a.ref
		}
	}
	return out, nil
}

func (s *Store) UserExists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *Store) CategoryVisible(_ context.Context, id, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	return ok && (c.UserID == nil || *c.UserID == userID), nil
}

func (s *Store) WithTx(ctx context.Context, fn func(ledger.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balances := map[int64]decimal.Decimal{}
	for id, a := range s.accounts {
		balances[id] = a.balance
	}
	n, next := len(s.transfers), s.nextID

	if err := fn(memTx{s}); err != nil {
		for id, b := range balances {
			s.accounts[id].balance = b
		}
		s.transfers, s.nextID = s.transfers[:n], next
		return err
	}
	return nil
}

// memTx runs with Store.mu already held by WithTx.
type memTx struct{ s *Store }

func (t memTx) LockBalances(_ context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := map[int64]decimal.Decimal{}
	for _, id := range ids {
		if a, ok := t.s.accounts[id]; ok && a.ref.Active {
			out[id] = a.balance
		}
	}
	return out, nil
}

func (t memTx) InsertTransfer(_ context.Context, tr models.Transfer) (models.Transfer, error) {
	t.s.nextID++
	tr.ID = t.s.nextID
	tr.Date = t.s.Now()
	t.s.transfers = append(t.s.transfers, tr)
	return tr, nil
}

func (t memTx) AddToBalance(_ context.Context, accountID int64, delta decimal.Decimal) error {
	if t.s.FailBalanceUpdate != nil {
		return t.s.FailBalanceUpdate
	}
	a, ok := t.s.accounts[accountID]
	if !ok || !a.ref.Active {
		return &ledger.NotFoundError{Entity: "account", ID: accountID}
	}
	a.balance = a.balance.Add(delta)
	return nil
}

func (s *Store) ListTransfers(_ context.Context, userID int64) ([]models.TransferDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TransferDetail
	for _, t := range s.transfers {
		if t.UserID != userID {
			continue
		}
		d := models.TransferDetail{Transfer: t}
		d.SourceAccount = s.accountName(t.SourceAccountID)
		d.DestinationAccount = s.accountName(t.DestinationAccountID)
		if t.CategoryID != nil {
			if c, ok := s.categories[*t.CategoryID]; ok {
				d.Category = &c.Description
			}
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) accountName(id *int64) *string {
	if id == nil {
		return nil
	}
	a, ok := s.accounts[*id]
	if !ok {
		return nil
	}
	return &a.description
}

func (s *Store) ListCategories(_ context.Context, userID int64) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Category
	for _, c := range s.categories {
		if c.UserID == nil || *c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Description < out[j].Description })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, &ledger.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Store) CategoryTaken(_ context.Context, userID int64, description string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(description))
	for _, c := range s.categories {
		if c.ID == excludeID {
			continue
		}
		if c.UserID != nil && *c.UserID != userID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(c.Description)) == want {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateCategory(_ context.Context, in models.CategoryInput) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	owner := in.UserID
	c := models.Category{ID: s.nextID, Description: in.Description, UserID: &owner}
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, id int64, description string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, &ledger.NotFoundError{Entity: "category", ID: id}
	}
	c.Description = description
	s.categories[id] = c
	return c, nil
}

func (s *Store) CountCategoryTransfers(_ context.Context, id int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.transfers {
		if t.CategoryID != nil && *t.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.categories, id)
	return nil
}
