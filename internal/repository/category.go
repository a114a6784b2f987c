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

const categoryColumns = `id, user_id, name, icon, sort_order, is_active, created_at`

type CategoryRepository struct {
	db *pgxpool.Pool
}

// NewCategoryRepository создает репозиторий категорий.
func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row pgx.Row) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.SortOrder, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, ErrNotFound
		}
		return c, err
	}

	return c, nil
}

// ListByUser возвращает категории пользователя в порядке сортировки.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1
		 ORDER BY sort_order, name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Icon, &c.SortOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// NamesByUser возвращает имена категорий пользователя по идентификаторам.
func (r *CategoryRepository) NamesByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name FROM categories WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string)
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}

	return names, rows.Err()
}

// GetByID возвращает категорию пользователя.
func (r *CategoryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

// Create добавляет категорию пользователя.
func (r *CategoryRepository) Create(ctx context.Context, userID uuid.UUID, name string, icon *string, sortOrder int) (models.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, icon, sort_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+categoryColumns,
		userID, name, icon, sortOrder,
	))
}

// Update изменяет категорию пользователя.
func (r *CategoryRepository) Update(ctx context.Context, userID, id uuid.UUID, name string, icon *string, sortOrder int, isActive bool) (models.Category, error) {
	return scanCategory(r.db.QueryRow(ctx,
		`UPDATE categories
		 SET name = $3,
		     icon = $4,
		     sort_order = $5,
		     is_active = $6
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+categoryColumns,
		id, userID, name, icon, sortOrder, isActive,
	))
}

// Delete удаляет категорию пользователя. Категория, на которую ссылаются
// платежи или строки планов, защищена внешним ключом.
func (r *CategoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrConflict
		}
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
