package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/satheeshds/cashpilot/auth"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/ledger/ledgertest"
	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details map[string]any  `json:"details"`
}

type testEnv struct {
	ledger   *ledgertest.Store
	accounts *fakeAccounts
	users    *fakeUsers
	mailer   *captureMailer
	router   http.Handler
}

// setup wires the handler globals to in-memory stores. Users 1 and 2 exist;
// user 1 owns accounts 1 (1000) and 2 (200), user 2 owns account 3 (0).
// Category 7 "Comida" belongs to user 1 and 8 "Servicios" is global.
func setup(t *testing.T) *testEnv {
	t.Helper()

	store := ledgertest.New()
	store.AddUser(1)
	store.AddUser(2)
	store.AddAccount(1, 1, "1000")
	store.AddAccount(2, 1, "200")
	store.AddAccount(3, 2, "0")
	owner := int64(1)
	store.AddCategory(7, "Comida", &owner)
	store.AddCategory(8, "Servicios", nil)

	accounts := newFakeAccounts()
	accounts.put(models.Account{ID: 1, Description: "Cuenta 1", Balance: decimal.NewFromInt(1000), BankID: 1, TypeID: 1, UserID: 1, Active: true})
	accounts.put(models.Account{ID: 2, Description: "Cuenta 2", Balance: decimal.NewFromInt(200), BankID: 1, TypeID: 2, UserID: 1, Active: true})
	accounts.put(models.Account{ID: 3, Description: "Cuenta 3", BankID: 2, TypeID: 1, UserID: 2, Active: true})

	env := &testEnv{
		ledger:   store,
		accounts: accounts,
		users:    newFakeUsers(),
		mailer:   &captureMailer{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	Ledger = ledger.NewService(store, logger)
	Accounts = env.accounts
	Users = env.users
	Tokens = auth.NewIssuer("test-secret", "cashpilot", time.Hour)
	Passwords = auth.Passwords{Cost: 4}
	Mailer = env.mailer
	ResetCodeTTL = 15 * time.Minute

	env.router = Routes()
	return env
}

// do sends a request as userID; zero sends it without a token.
func (e *testEnv) do(t *testing.T, method, path string, body any, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		token, _, err := Tokens.Issue(userID, fmt.Sprintf("user%d", userID))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &out), rec.Body.String())
	return out
}

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[int64]models.Account
	nextID   int64
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[int64]models.Account{}, nextID: 100}
}

func (f *fakeAccounts) put(a models.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[a.ID] = a
}

func (f *fakeAccounts) ListAccounts(_ context.Context, userID int64) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Account
	for _, a := range f.accounts {
		if a.UserID == userID && a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccounts) GetAccount(_ context.Context, id int64) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", ID: id}
	}
	return a, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, in models.AccountInput) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.BankID > 2 {
		return models.Account{}, &ledger.ValidationError{Fields: []string{"id_banco", "id_tipo_cuenta"}, Message: "unknown bank or account type"}
	}
	f.nextID++
	a := models.Account{
		ID: f.nextID, Description: in.Description, Balance: in.OpeningBalance(),
		BankID: in.BankID, TypeID: in.TypeID, UserID: in.UserID, Color: in.Color, Active: true,
	}
	f.accounts[a.ID] = a
	return a, nil
}

func (f *fakeAccounts) UpdateAccount(_ context.Context, id int64, in models.AccountUpdate) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok || !a.Active {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", ID: id}
	}
	a.Description, a.BankID, a.TypeID, a.Color = in.Description, in.BankID, in.TypeID, in.Color
	f.accounts[id] = a
	return a, nil
}

func (f *fakeAccounts) DeactivateAccount(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok || !a.Active {
		return &ledger.NotFoundError{Entity: "account", ID: id}
	}
	a.Active = false
	f.accounts[id] = a
	return nil
}

func (f *fakeAccounts) ListBanks(context.Context) ([]models.Lookup, error) {
	return []models.Lookup{{ID: 1, Description: "Banco Pichincha"}, {ID: 2, Description: "Produbanco"}}, nil
}

func (f *fakeAccounts) ListAccountTypes(context.Context) ([]models.Lookup, error) {
	return nil, nil
}

type fakeUsers struct {
	mu       sync.Mutex
	users    map[int64]models.User
	attempts map[int64]int
	nextID   int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]models.User{}, attempts: map[int64]int{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, in models.RegisterInput, passwordHash string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, in.Username) || strings.EqualFold(u.Email, in.Email) {
			return models.User{}, &ledger.ConflictError{Message: "username or email already registered"}
		}
	}
	f.nextID++
	u := models.User{
		ID: f.nextID, Name: in.Name, Username: in.Username, Email: in.Email,
		PasswordHash: &passwordHash, CreatedAt: time.Now(),
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &ledger.NotFoundError{Entity: "user", ID: id}
	}
	return u, nil
}

func (f *fakeUsers) FindUserByLogin(ctx context.Context, identifier string) (models.User, error) {
	if strings.Contains(identifier, "@") {
		return f.FindUserByEmail(ctx, identifier)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Username, identifier) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %q: %w", identifier, ledger.ErrNotFound)
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user with email %q: %w", email, ledger.ErrNotFound)
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, in models.ProfileInput) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, &ledger.NotFoundError{Entity: "user", ID: id}
	}
	u.Name, u.Email = in.Name, in.Email
	f.users[id] = u
	return u, nil
}

func (f *fakeUsers) SetResetCode(_ context.Context, id int64, code string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.ResetCode, u.ResetExpires = &code, &expires
	f.users[id] = u
	f.attempts[id] = 0
	return nil
}

func (f *fakeUsers) SetPassword(_ context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.PasswordHash, u.ResetCode, u.ResetExpires = &passwordHash, nil, nil
	f.users[id] = u
	f.attempts[id] = 0
	return nil
}

func (f *fakeUsers) ReserveResetAttempt(_ context.Context, id int64, maxAttempts int) (*string, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.ResetCode == nil || f.attempts[id] >= maxAttempts {
		return nil, nil, nil
	}
	f.attempts[id]++
	return u.ResetCode, u.ResetExpires, nil
}

// expireReset moves the pending reset code of id into the past.
func (f *fakeUsers) expireReset(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	past := time.Now().Add(-time.Minute)
	u.ResetExpires = &past
	f.users[id] = u
}

type captureMailer struct {
	mu    sync.Mutex
	email string
	code  string
	sent  int
}

func (m *captureMailer) SendResetCode(_ context.Context, email, code string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email, m.code = email, code
	m.sent++
	return nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
