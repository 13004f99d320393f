package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/stanleysydney/anonsafety-api/internal/models"
)

// UserRepository provides persistence for accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	query := `INSERT INTO users (id, username, email, password_hash, region, role, email_notifications, created_at, updated_at)
VALUES (:id, :username, :email, :password_hash, :region, :role, :email_notifications, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT id, username, email, password_hash, region, role, email_notifications, created_at, updated_at
FROM users WHERE email = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns a user by username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	const query = `SELECT id, username, email, password_hash, region, role, email_notifications, created_at, updated_at
FROM users WHERE username = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListNotifiable returns users in the region who opted into email alerts.
func (r *UserRepository) ListNotifiable(ctx context.Context, region string) ([]models.User, error) {
	const query = `SELECT id, username, email, password_hash, region, role, email_notifications, created_at, updated_at
FROM users WHERE region = $1 AND email_notifications = TRUE`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, region); err != nil {
		return nil, fmt.Errorf("list notifiable users: %w", err)
	}
	return users, nil
}
