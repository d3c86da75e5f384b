package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
)

// defaultCategories are seeded on first read when the table is empty, so a
// fresh database always has something to categorize into.
var defaultCategories = []model.Category{
	{Name: "Groceries", Kind: model.CategoryKindExpense, ColorHex: "#4CAF50"},
	{Name: "Subscriptions", Kind: model.CategoryKindExpense, ColorHex: "#2196F3"},
	{Name: "Housing", Kind: model.CategoryKindExpense, ColorHex: "#FF9800"},
	{Name: "Income", Kind: model.CategoryKindIncome, ColorHex: "#9C27B0"},
	{Name: "Other", Kind: model.CategoryKindExpense, ColorHex: "#9E9E9E"},
}

// GetCategories returns all categories ordered by name. When the table is
// empty the default set is created first.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := s.queryCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	if err := s.seedDefaultCategories(ctx); err != nil {
		return nil, err
	}
	return s.queryCategories(ctx)
}

func (s *SQLiteStorage) seedDefaultCategories(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range defaultCategories {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (id, name, kind, color_hex, is_default, created_at)
			VALUES (?, ?, ?, ?, 1, ?)
		`, uuid.New().String(), c.Name, c.Kind, c.ColorHex, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}
	slog.Info("Seeded default categories", "count", len(defaultCategories))
	return nil
}

func (s *SQLiteStorage) queryCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, color_hex, is_default, created_at
		FROM categories
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by identifier.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategory(ctx, `WHERE id = ?`, id)
}

// GetCategoryByName retrieves a category by its unique name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategory(ctx, `WHERE name = ?`, name)
}

func (s *SQLiteStorage) getCategory(ctx context.Context, where string, arg any) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, color_hex, is_default, created_at
		FROM categories `+where, arg)
	category, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// CreateCategory persists a new category. Names are unique.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, kind, color_hex, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, category.ID, category.Name, category.Kind, category.ColorHex, category.IsDefault, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory replaces the mutable fields of an existing category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, kind = ?, color_hex = ? WHERE id = ?
	`, category.Name, category.Kind, category.ColorHex, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check category update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category. Transactions referencing it keep their
// category_id; callers that care should unassign first.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check category deletion: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanCategory(sc scanner) (*model.Category, error) {
	var category model.Category
	if err := sc.Scan(
		&category.ID,
		&category.Name,
		&category.Kind,
		&category.ColorHex,
		&category.IsDefault,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}
