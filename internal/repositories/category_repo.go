package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"indumart/internal/common"
	"indumart/internal/models"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Category, error)
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

// Create inserts a category. A slug collision surfaces as a field-level
// validation error rather than a silent no-op.
func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Slug, category.Description)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return &common.ValidationError{Fields: []common.FieldError{{Field: "slug", Message: "slug already exists"}}}
	}
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return category, nil
}

// Update requires category.UpdatedAt to match the stored row; a concurrent
// edit returns a conflict instead of overwriting it.
func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, updated_at = NOW()
		WHERE id = $4 AND updated_at = $5
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Slug, category.Description, category.ID, category.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &common.VersionConflictError{Resource: "category"}
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *categoryRepo) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	query := `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
