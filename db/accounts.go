package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
)

const accountSelectQuery = `SELECT c.id_cuenta, c.descripcion, c.saldo, c.id_banco, c.id_tipo_cuenta,
	c.id_usuario, c.color, c.activa, c.created_at,
	b.descripcion, tc.descripcion
	FROM cuenta c
	LEFT JOIN banco b ON b.id_banco = c.id_banco
	LEFT JOIN tipo_cuenta tc ON tc.id_tipo_cuenta = c.id_tipo_cuenta`

func scanAccount(row scanner) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Description, &a.Balance, &a.BankID, &a.TypeID,
		&a.UserID, &a.Color, &a.Active, &a.CreatedAt,
		&a.BankName, &a.TypeName)
	return a, err
}

var errUnknownLookup = &ledger.ValidationError{
	Fields:  []string{"id_banco", "id_tipo_cuenta"},
	Message: "unknown bank or account type",
}

// ListAccounts returns userID's active accounts.
func (s *Store) ListAccounts(ctx context.Context, userID int64) ([]models.Account, error) {
	rows, err := s.pool.Query(ctx, accountSelectQuery+
		` WHERE c.id_usuario = $1 AND c.activa ORDER BY c.descripcion`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	a, err := scanAccount(s.pool.QueryRow(ctx, accountSelectQuery+` WHERE c.id_cuenta = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return a, &ledger.NotFoundError{Entity: "account", ID: id}
	}
	return a, err
}

func (s *Store) CreateAccount(ctx context.Context, in models.AccountInput) (models.Account, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `INSERT INTO cuenta (descripcion, saldo, id_banco, id_tipo_cuenta, id_usuario, color)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id_cuenta`,
		in.Description, in.OpeningBalance(), in.BankID, in.TypeID, in.UserID, in.Color).Scan(&id)
	if pgCode(err) == codeForeignKeyViolation {
		return models.Account{}, errUnknownLookup
	}
	if err != nil {
		return models.Account{}, err
	}
	return s.GetAccount(ctx, id)
}

// UpdateAccount edits descriptive fields only; saldo is owned by the transfer writer.
func (s *Store) UpdateAccount(ctx context.Context, id int64, in models.AccountUpdate) (models.Account, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE cuenta SET descripcion = $1, id_banco = $2, id_tipo_cuenta = $3, color = $4
		WHERE id_cuenta = $5 AND activa`,
		in.Description, in.BankID, in.TypeID, in.Color, id)
	if pgCode(err) == codeForeignKeyViolation {
		return models.Account{}, errUnknownLookup
	}
	if err != nil {
		return models.Account{}, err
	}
	if tag.RowsAffected() == 0 {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", ID: id}
	}
	return s.GetAccount(ctx, id)
}

// DeactivateAccount hides the account; transfers that reference it keep their history.
func (s *Store) DeactivateAccount(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE cuenta SET activa = FALSE WHERE id_cuenta = $1 AND activa`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ledger.NotFoundError{Entity: "account", ID: id}
	}
	return nil
}

func (s *Store) ListBanks(ctx context.Context) ([]models.Lookup, error) {
	return s.listLookups(ctx, `SELECT id_banco, descripcion FROM banco ORDER BY descripcion`)
}

func (s *Store) ListAccountTypes(ctx context.Context) ([]models.Lookup, error) {
	return s.listLookups(ctx, `SELECT id_tipo_cuenta, descripcion FROM tipo_cuenta ORDER BY descripcion`)
}

func (s *Store) listLookups(ctx context.Context, query string) ([]models.Lookup, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Lookup, error) {
		var l models.Lookup
		err := row.Scan(&l.ID, &l.Description)
		return l, err
	})
}
