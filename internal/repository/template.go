package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const templateColumns = `id, user_id, category_id, sub_option, sort_order, is_active, created_at`

type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository создает репозиторий шаблонов подкатегорий.
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func scanTemplate(row pgx.Row) (models.CategoryTemplate, error) {
	var t models.CategoryTemplate
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.SubOption, &t.SortOrder, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return t, ErrNotFound
		}
		return t, err
	}

	return t, nil
}

// ListByUser возвращает шаблоны пользователя, сгруппированные по категориям.
func (r *TemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CategoryTemplate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+templateColumns+`
		 FROM category_templates
		 WHERE user_id = $1
		 ORDER BY category_id, sort_order, sub_option`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.CategoryTemplate
	for rows.Next() {
		var t models.CategoryTemplate
		if err := rows.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.SubOption, &t.SortOrder, &t.IsActive, &t.CreatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}

	return templates, rows.Err()
}

// Create добавляет шаблон подкатегории.
func (r *TemplateRepository) Create(ctx context.Context, userID, categoryID uuid.UUID, subOption string, sortOrder int) (models.CategoryTemplate, error) {
	return scanTemplate(r.db.QueryRow(ctx,
		`INSERT INTO category_templates (user_id, category_id, sub_option, sort_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+templateColumns,
		userID, categoryID, subOption, sortOrder,
	))
}

// Update изменяет шаблон подкатегории.
func (r *TemplateRepository) Update(ctx context.Context, userID, id uuid.UUID, subOption string, sortOrder int, isActive bool) (models.CategoryTemplate, error) {
	return scanTemplate(r.db.QueryRow(ctx,
		`UPDATE category_templates
		 SET sub_option = $3,
		     sort_order = $4,
		     is_active = $5
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+templateColumns,
		id, userID, subOption, sortOrder, isActive,
	))
}

// Delete удаляет шаблон подкатегории.
func (r *TemplateRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM category_templates WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
