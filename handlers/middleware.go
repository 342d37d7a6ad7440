package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/satheeshds/cashpilot/auth"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data    any    `json:"data"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// AccountStore persists accounts and the lookup tables.
type AccountStore interface {
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	GetAccount(ctx context.Context, id int64) (models.Account, error)
	CreateAccount(ctx context.Context, in models.AccountInput) (models.Account, error)
	UpdateAccount(ctx context.Context, id int64, in models.AccountUpdate) (models.Account, error)
	DeactivateAccount(ctx context.Context, id int64) error
	ListBanks(ctx context.Context) ([]models.Lookup, error)
	ListAccountTypes(ctx context.Context) ([]models.Lookup, error)
}

// UserStore persists users and their credentials.
type UserStore interface {
	CreateUser(ctx context.Context, in models.RegisterInput, passwordHash string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	FindUserByLogin(ctx context.Context, identifier string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id int64, in models.ProfileInput) (models.User, error)
	SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	ReserveResetAttempt(ctx context.Context, id int64, maxAttempts int) (code *string, expires *time.Time, err error)
}

// Shared collaborators used by all handlers, set once at startup.
var (
	Ledger       *ledger.Service
	Accounts     AccountStore
	Users        UserStore
	Tokens       *auth.Issuer
	Passwords    auth.Passwords
	Mailer       auth.Mailer
	ResetCodeTTL = 15 * time.Minute
	// MaxResetAttempts wrong guesses burn a reset code.
	MaxResetAttempts = 5
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeErrorDetails(w, status, msg, nil)
}

func writeErrorDetails(w http.ResponseWriter, status int, msg string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Error: msg, Details: details})
}

// writeServiceError maps domain errors to status codes. Anything unrecognized
// is logged and answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *ledger.ValidationError
		funds      *ledger.InsufficientFundsError
		conflict   *ledger.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		var details any
		if len(validation.Fields) > 0 {
			details = map[string]any{"campos": validation.Fields}
		}
		writeErrorDetails(w, http.StatusBadRequest, validation.Error(), details)
	case errors.As(err, &funds):
		writeErrorDetails(w, http.StatusBadRequest, "insufficient funds", map[string]any{
			"saldo":     funds.Balance.StringFixed(2),
			"requerido": funds.Required.StringFixed(2),
			"faltante":  funds.Shortfall().StringFixed(2),
		})
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict):
		var details any
		if conflict.Count > 0 {
			details = map[string]any{"transferencias": conflict.Count}
		}
		writeErrorDetails(w, http.StatusConflict, conflict.Message, details)
	default:
		slog.Error("request failed", "error", err,
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type ctxKey struct{}

// RequireAuth is middleware that enforces a valid Bearer access token and
// stores its claims in the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="cashpilot"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		claims, err := Tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="cashpilot", error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

// currentUserID returns the authenticated user id; RequireAuth guarantees it parses.
func currentUserID(r *http.Request) int64 {
	claims, ok := r.Context().Value(ctxKey{}).(*auth.Claims)
	if !ok {
		return 0
	}
	id, _ := claims.UserID()
	return id
}

// authorize rejects requests acting on behalf of another user.
func authorize(w http.ResponseWriter, r *http.Request, userID int64) bool {
	if userID != currentUserID(r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter, answering 400 otherwise.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	return parseID(w, chi.URLParam(r, name), name)
}

func queryID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	return parseID(w, r.URL.Query().Get(name), name)
}

func parseID(w http.ResponseWriter, raw, name string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
