package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanryp/servicedesk-sub004/internal/domain"
)

// UserRepository defines persistence access for portal users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userSelect = `
        SELECT u.id, u.name, u.email, u.password_hash, u.role, u.status, u.created_at, u.updated_at,
               d.id, d.name
        FROM users u LEFT JOIN departments d ON d.id = u.department_id`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, department_id, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	var departmentID *string
	if user.Department != nil {
		departmentID = &user.Department.ID
	}
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		departmentID,
		user.Status,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id=$1`, id))
	if err != nil {
		return nil, noRowsOnMalformedID(err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE LOWER(u.email)=LOWER($1)`, email))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user     domain.User
		deptID   *string
		deptName *string
	)
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&deptID,
		&deptName,
	); err != nil {
		return nil, err
	}
	if deptID != nil {
		user.Department = &domain.Department{ID: *deptID}
		if deptName != nil {
			user.Department.Name = *deptName
		}
	}
	return &user, nil
}
