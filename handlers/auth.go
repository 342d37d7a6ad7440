package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/satheeshds/cashpilot/auth"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
)

// Session is returned by sign-up and login.
type Session struct {
	Token   string      `json:"token"`
	Expires time.Time   `json:"expira"`
	User    models.User `json:"usuario"`
}

const resetSentMessage = "if the email is registered, a reset code has been sent"

func newSession(w http.ResponseWriter, r *http.Request, status int, u models.User) {
	token, expires, err := Tokens.Issue(u.ID, u.Username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, status, Session{Token: token, Expires: expires, User: u})
}

// Register creates a user account
// @Summary      Sign up
// @Description  Create a user with a bcrypt-hashed password and return an access token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      models.RegisterInput  true  "Sign-up data"
// @Success      201   {object}  Response{data=Session}
// @Failure      400   {object}  Response{error=string}
// @Failure      409   {object}  Response{error=string}
// @Router       /auth/registro [post]
func Register(w http.ResponseWriter, r *http.Request) {
	var input models.RegisterInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	hash, err := Passwords.Hash(input.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	u, err := Users.CreateUser(r.Context(), input, hash)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("user registered", "id_usuario", u.ID, "username", u.Username)
	newSession(w, r, http.StatusCreated, u)
}

// Login exchanges credentials for an access token
// @Summary      Log in
// @Description  Authenticate with username or email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      models.LoginInput  true  "Credentials"
// @Success      200          {object}  Response{data=Session}
// @Failure      401          {object}  Response{error=string}
// @Router       /auth/login [post]
func Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.Identifier = strings.TrimSpace(input.Identifier)
	if input.Identifier == "" || input.Password == "" {
		writeError(w, http.StatusBadRequest, "usuario and password are required")
		return
	}
	u, err := Users.FindUserByLogin(r.Context(), input.Identifier)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !Passwords.Check(u.PasswordHash, input.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	newSession(w, r, http.StatusOK, u)
}

// RequestPasswordReset issues a reset code
// @Summary      Request password reset
// @Description  Send a short-lived reset code to the email. The response is the same whether or not the email exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetRequest  true  "Email"
// @Success      200      {object}  Response{data=string}
// @Router       /auth/recuperar [post]
func RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var input models.ResetRequest
	if !decodeJSON(w, r, &input) {
		return
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	ctx := r.Context()
	u, err := Users.FindUserByEmail(ctx, email)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
	case err != nil:
		slog.Error("password reset lookup failed", "error", err)
	default:
		if err := sendResetCode(r, u); err != nil {
			slog.Error("password reset failed", "id_usuario", u.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, resetSentMessage)
}

func sendResetCode(r *http.Request, u models.User) error {
	code, err := auth.NewResetCode()
	if err != nil {
		return err
	}
	expires := time.Now().Add(ResetCodeTTL)
	if err := Users.SetResetCode(r.Context(), u.ID, code, expires); err != nil {
		return err
	}
	return Mailer.SendResetCode(r.Context(), u.Email, code, expires)
}

// ResetPassword sets a new password using a reset code
// @Summary      Reset password
// @Description  A code accepts a limited number of guesses before a new one must be requested.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        reset  body      models.ResetInput  true  "Email, code and new password"
// @Success      200    {object}  Response{data=string}
// @Failure      400    {object}  Response{error=string}
// @Router       /auth/restablecer [post]
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input models.ResetInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx := r.Context()
	u, err := Users.FindUserByEmail(ctx, input.Email)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "invalid or expired code")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	code, expires, err := Users.ReserveResetAttempt(ctx, u.ID, MaxResetAttempts)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !auth.CodesMatch(code, input.Code) || expires == nil || time.Now().After(*expires) {
		slog.Warn("password reset rejected", "id_usuario", u.ID)
		writeError(w, http.StatusBadRequest, "invalid or expired code")
		return
	}

	hash, err := Passwords.Hash(input.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := Users.SetPassword(ctx, u.ID, hash); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("password reset", "id_usuario", u.ID)
	writeJSON(w, http.StatusOK, "password updated")
}
