package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
)

const userSelectQuery = `SELECT id_usuario, nombre, username, email, password_hash, es_github,
	codigo_recuperacion, expiracion_codigo, created_at
	FROM usuario`

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.GitHub,
		&u.ResetCode, &u.ResetExpires, &u.CreatedAt)
	return u, err
}

var errUserTaken = &ledger.ConflictError{Message: "username or email already registered"}

func (s *Store) CreateUser(ctx context.Context, in models.RegisterInput, passwordHash string) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `INSERT INTO usuario (nombre, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id_usuario, nombre, username, email, password_hash, es_github,
			codigo_recuperacion, expiracion_codigo, created_at`,
		in.Name, in.Username, in.Email, passwordHash))
	if pgCode(err) == codeUniqueViolation {
		return models.User{}, errUserTaken
	}
	return u, err
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, userSelectQuery+` WHERE id_usuario = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, &ledger.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

// FindUserByLogin matches identifier against the email when it contains an
// @ and against the username otherwise, ignoring case.
func (s *Store) FindUserByLogin(ctx context.Context, identifier string) (models.User, error) {
	if strings.Contains(identifier, "@") {
		return s.FindUserByEmail(ctx, identifier)
	}
	u, err := scanUser(s.pool.QueryRow(ctx, userSelectQuery+` WHERE lower(username) = lower($1)`, identifier))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, fmt.Errorf("user %q: %w", identifier, ledger.ErrNotFound)
	}
	return u, err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, userSelectQuery+` WHERE lower(email) = lower($1)`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return u, fmt.Errorf("user with email %q: %w", email, ledger.ErrNotFound)
	}
	return u, err
}

func (s *Store) UpdateProfile(ctx context.Context, id int64, in models.ProfileInput) (models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `UPDATE usuario SET nombre = $1, email = $2
		WHERE id_usuario = $3
		RETURNING id_usuario, nombre, username, email, password_hash, es_github,
			codigo_recuperacion, expiracion_codigo, created_at`,
		in.Name, in.Email, id))
	if pgCode(err) == codeUniqueViolation {
		return models.User{}, errUserTaken
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return u, &ledger.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

func (s *Store) SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE usuario SET codigo_recuperacion = $1, expiracion_codigo = $2,
		intentos_codigo = 0
		WHERE id_usuario = $3`, code, expires, id)
	return err
}

// SetPassword stores a new hash and clears any pending reset code.
func (s *Store) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := s.pool.Exec(ctx, `UPDATE usuario SET password_hash = $1,
		codigo_recuperacion = NULL, expiracion_codigo = NULL, intentos_codigo = 0
		WHERE id_usuario = $2`, passwordHash, id)
	return err
}

// ReserveResetAttempt counts one guess against the pending reset code and
// returns the code to compare with. Once maxAttempts guesses were counted it
// returns nil until a new code is issued. The row lock serializes guesses.
func (s *Store) ReserveResetAttempt(ctx context.Context, id int64, maxAttempts int) (*string, *time.Time, error) {
	var (
		code    *string
		expires *time.Time
	)
	err := s.pool.QueryRow(ctx, `UPDATE usuario SET intentos_codigo = intentos_codigo + 1
		WHERE id_usuario = $1 AND codigo_recuperacion IS NOT NULL AND intentos_codigo < $2
		RETURNING codigo_recuperacion, expiracion_codigo`, id, maxAttempts).Scan(&code, &expires)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	return code, expires, err
}
