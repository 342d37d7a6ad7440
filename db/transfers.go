package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
	"github.com/shopspring/decimal"
)

const transferSelectQuery = `SELECT t.id_transferencia, t.monto, t.fecha, t.concepto,
	t.id_cuenta_origen, t.id_cuenta_destino, t.id_usuario, t.tipo_transaccion,
	t.nombre_destinatario, t.id_categoria, t.comision, t.estado,
	co.descripcion, bo.descripcion, tco.descripcion,
	cd.descripcion, bd.descripcion, tcd.descripcion,
	cat.descripcion
	FROM transferencia t
	LEFT JOIN cuenta co ON co.id_cuenta = t.id_cuenta_origen
	LEFT JOIN banco bo ON bo.id_banco = co.id_banco
	LEFT JOIN tipo_cuenta tco ON tco.id_tipo_cuenta = co.id_tipo_cuenta
	LEFT JOIN cuenta cd ON cd.id_cuenta = t.id_cuenta_destino
	LEFT JOIN banco bd ON bd.id_banco = cd.id_banco
	LEFT JOIN tipo_cuenta tcd ON tcd.id_tipo_cuenta = cd.id_tipo_cuenta
	LEFT JOIN categoria cat ON cat.id_categoria = t.id_categoria`

func scanTransferDetail(row scanner) (models.TransferDetail, error) {
	var d models.TransferDetail
	err := row.Scan(&d.ID, &d.Amount, &d.Date, &d.Concept,
		&d.SourceAccountID, &d.DestinationAccountID, &d.UserID, &d.Kind,
		&d.Counterparty, &d.CategoryID, &d.Fee, &d.Status,
		&d.SourceAccount, &d.SourceBank, &d.SourceType,
		&d.DestinationAccount, &d.DestinationBank, &d.DestinationType,
		&d.Category)
	return d, err
}

func (s *Store) FindAccounts(ctx context.Context, ids []int64) (map[int64]ledger.AccountRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id_cuenta, id_usuario, activa FROM cuenta WHERE id_cuenta = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]ledger.AccountRef, len(ids))
	for rows.Next() {
		var a ledger.AccountRef
		if err := rows.Scan(&a.ID, &a.UserID, &a.Active); err != nil {
			return nil, err
		}
		found[a.ID] = a
	}
	return found, rows.Err()
}

func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM usuario WHERE id_usuario = $1)`, id).Scan(&ok)
	return ok, err
}

func (s *Store) CategoryVisible(ctx context.Context, id, userID int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categoria
		WHERE id_categoria = $1 AND (id_usuario IS NULL OR id_usuario = $2))`, id, userID).Scan(&ok)
	return ok, err
}

// WithTx runs fn inside a pgx transaction; pgx.BeginFunc commits on nil and
// rolls back on any error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

// LockBalances takes row locks in id order so two transfers over the same
// pair of accounts cannot deadlock.
func (t pgTx) LockBalances(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	rows, err := t.tx.Query(ctx, `SELECT id_cuenta, saldo FROM cuenta
		WHERE id_cuenta = ANY($1) AND activa
		ORDER BY id_cuenta
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make(map[int64]decimal.Decimal, len(ids))
	for rows.Next() {
		var id int64
		var saldo decimal.Decimal
		if err := rows.Scan(&id, &saldo); err != nil {
			return nil, err
		}
		balances[id] = saldo
	}
	return balances, rows.Err()
}

func (t pgTx) InsertTransfer(ctx context.Context, tr models.Transfer) (models.Transfer, error) {
	err := t.tx.QueryRow(ctx, `INSERT INTO transferencia (monto, concepto, id_cuenta_origen, id_cuenta_destino,
		id_usuario, tipo_transaccion, nombre_destinatario, id_categoria, comision, estado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id_transferencia, fecha, monto, comision`,
		tr.Amount, tr.Concept, tr.SourceAccountID, tr.DestinationAccountID,
		tr.UserID, string(tr.Kind), tr.Counterparty, tr.CategoryID, tr.Fee, tr.Status,
	).Scan(&tr.ID, &tr.Date, &tr.Amount, &tr.Fee)
	return tr, err
}

func (t pgTx) AddToBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	tag, err := t.tx.Exec(ctx, `UPDATE cuenta SET saldo = saldo + $1 WHERE id_cuenta = $2 AND activa`, delta, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("account %d: %w", accountID, ledger.ErrNotFound)
	}
	return nil
}

func (s *Store) ListTransfers(ctx context.Context, userID int64) ([]models.TransferDetail, error) {
	rows, err := s.pool.Query(ctx, transferSelectQuery+
		` WHERE t.id_usuario = $1 ORDER BY t.fecha DESC, t.id_transferencia DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []models.TransferDetail
	for rows.Next() {
		d, err := scanTransferDetail(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, d)
	}
	return history, rows.Err()
}
