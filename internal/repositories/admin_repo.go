package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"indumart/internal/models"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type adminRepo struct {
	db Database
}

func NewAdminRepo(db Database) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) Create(ctx context.Context, admin *models.Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, admin.ID, admin.Email, admin.PasswordHash, admin.Name)
	return err
}

func (r *adminRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM admins
		WHERE id = $1
	`
	return r.scanAdmin(r.db.QueryRow(ctx, query, id))
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `
		SELECT id, email, password_hash, name, created_at, updated_at
		FROM admins
		WHERE email = $1
	`
	return r.scanAdmin(r.db.QueryRow(ctx, query, email))
}

func (r *adminRepo) scanAdmin(row pgx.Row) (*models.Admin, error) {
	admin := &models.Admin{}
	err := row.Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.Name, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}
