package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/satheeshds/cashpilot/models"
)

// Categories lists the global categories plus userID's own.
func (s *Service) Categories(ctx context.Context, userID int64) ([]models.Category, error) {
	if userID <= 0 {
		return nil, &ValidationError{Fields: []string{"id_usuario"}, Message: "missing or invalid fields"}
	}
	cats, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

func (s *Service) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	if msg := in.Validate(); msg != "" {
		return models.Category{}, &ValidationError{Message: msg}
	}
	if err := s.checkDuplicate(ctx, in, 0); err != nil {
		return models.Category{}, err
	}
	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return models.Category{}, fmt.Errorf("creating category: %w", err)
	}
	s.logger.Info("category created", "id", c.ID, "user_id", in.UserID)
	return c, nil
}

// UpdateCategory renames one of the user's categories. Global categories
// cannot be edited through a user.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in models.CategoryInput) (models.Category, error) {
	if msg := in.Validate(); msg != "" {
		return models.Category{}, &ValidationError{Message: msg}
	}
	if _, err := s.ownedCategory(ctx, id, in.UserID); err != nil {
		return models.Category{}, err
	}
	if err := s.checkDuplicate(ctx, in, id); err != nil {
		return models.Category{}, err
	}
	c, err := s.store.UpdateCategory(ctx, id, in.Description)
	if err != nil {
		return models.Category{}, fmt.Errorf("updating category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes one of the user's categories, refusing while any
// transfer still references it.
func (s *Service) DeleteCategory(ctx context.Context, id, userID int64) error {
	if _, err := s.ownedCategory(ctx, id, userID); err != nil {
		return err
	}
	n, err := s.store.CountCategoryTransfers(ctx, id)
	if err != nil {
		return fmt.Errorf("counting category transfers: %w", err)
	}
	if n > 0 {
		return &ConflictError{
			Message: fmt.Sprintf("category is used by %d transfers", n),
			Count:   n,
		}
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	s.logger.Info("category deleted", "id", id, "user_id", userID)
	return nil
}

func (s *Service) ownedCategory(ctx context.Context, id, userID int64) (models.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Category{}, &NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("looking up category: %w", err)
	}
	if c.UserID == nil || *c.UserID != userID {
		return models.Category{}, &NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Service) checkDuplicate(ctx context.Context, in models.CategoryInput, excludeID int64) error {
	taken, err := s.store.CategoryTaken(ctx, in.UserID, in.Description, excludeID)
	if err != nil {
		return fmt.Errorf("checking category name: %w", err)
	}
	if taken {
		return &ConflictError{Message: fmt.Sprintf("category %q already exists", in.Description)}
	}
	return nil
}
