package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const userColumns = `id, username, email, password_hash, phone, role, default_budget_cents, is_verified, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Phone,
		&user.Role, &user.DefaultBudgetCents, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user, ErrNotFound
		}
		return user, err
	}

	return user, nil
}

// Create создает подтвержденного пользователя в базе.
func (r *UserRepository) Create(ctx context.Context, username, email, passwordHash string, phone *string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, phone, is_verified)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING `+userColumns,
		username, email, passwordHash, phone,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	return user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
}

// GetByUsername возвращает пользователя по имени.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	))
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

// ExistsByEmail сообщает, занят ли email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)

	return exists, err
}

// ExistsByUsername сообщает, занято ли имя пользователя.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists)

	return exists, err
}

// UpdateProfile обновляет профиль пользователя.
func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, username string, phone *string, defaultBudgetCents int64) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET username = $2,
		     phone = $3,
		     default_budget_cents = $4,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, username, phone, defaultBudgetCents,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	return user, nil
}

// UpdateEmail меняет email пользователя.
func (r *UserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET email = $2,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, email,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user, ErrConflict
		}
		return user, err
	}

	return user, nil
}

// UpdatePassword меняет хеш пароля пользователя.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $2,
		     updated_at = NOW()
		 WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// List возвращает всех пользователей, новые первыми.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Phone,
			&user.Role, &user.DefaultBudgetCents, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateRoleAndVerified меняет роль и флаг подтверждения одним запросом.
// NULL в verified оставляет флаг как есть.
func (r *UserRepository) UpdateRoleAndVerified(ctx context.Context, id uuid.UUID, role models.Role, verified *bool) (models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`UPDATE users
		 SET role = $2,
		     is_verified = COALESCE($3, is_verified),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, role, verified,
	))
}

// Delete удаляет пользователя вместе с его данными.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
