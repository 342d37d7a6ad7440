package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/satheeshds/cashpilot/ledger"
	"github.com/satheeshds/cashpilot/models"
)

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Description, &c.UserID)
	return c, err
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id_categoria, descripcion, id_usuario FROM categoria
		WHERE id_usuario IS NULL OR id_usuario = $1
		ORDER BY lower(descripcion)`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx,
		`SELECT id_categoria, descripcion, id_usuario FROM categoria WHERE id_categoria = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return c, &ledger.NotFoundError{Entity: "category", ID: id}
	}
	return c, err
}

func (s *Store) CategoryTaken(ctx context.Context, userID int64, description string, excludeID int64) (bool, error) {
	var taken bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categoria
		WHERE lower(trim(descripcion)) = lower(trim($1))
		AND (id_usuario IS NULL OR id_usuario = $2)
		AND id_categoria <> $3)`, description, userID, excludeID).Scan(&taken)
	return taken, err
}

var errCategoryTaken = &ledger.ConflictError{Message: "category already exists"}

// CreateCategory maps a lost race on idx_categoria_descripcion to a conflict.
func (s *Store) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `INSERT INTO categoria (descripcion, id_usuario)
		VALUES ($1, $2) RETURNING id_categoria, descripcion, id_usuario`, in.Description, in.UserID))
	if pgCode(err) == codeUniqueViolation {
		return c, errCategoryTaken
	}
	return c, err
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, description string) (models.Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `UPDATE categoria SET descripcion = $1
		WHERE id_categoria = $2 RETURNING id_categoria, descripcion, id_usuario`, description, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return c, &ledger.NotFoundError{Entity: "category", ID: id}
	}
	if pgCode(err) == codeUniqueViolation {
		return c, errCategoryTaken
	}
	return c, err
}

func (s *Store) CountCategoryTransfers(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transferencia WHERE id_categoria = $1`, id).Scan(&n)
	return n, err
}

// DeleteCategory relies on the ON DELETE RESTRICT foreign key for a transfer
// inserted after the caller counted references.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categoria WHERE id_categoria = $1`, id)
	if pgCode(err) == codeForeignKeyViolation {
		n, _ := s.CountCategoryTransfers(ctx, id)
		return &ledger.ConflictError{Message: "category is used by transfers", Count: n}
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ledger.NotFoundError{Entity: "category", ID: id}
	}
	return nil
}
