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

const itemColumns = `id, user_id, month_plan_id, category_id, name, planned_amount_cents, actual_amount_cents, is_paid, notes, priority, created_at, updated_at`

type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository создает репозиторий строк плана.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

func scanItem(row pgx.Row) (models.PaymentItem, error) {
	var item models.PaymentItem
	err := row.Scan(&item.ID, &item.UserID, &item.MonthPlanID, &item.CategoryID, &item.Name,
		&item.PlannedAmountCents, &item.ActualAmountCents, &item.IsPaid, &item.Notes, &item.Priority,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, ErrNotFound
		}
		return item, err
	}

	return item, nil
}

// FindByNaturalKey возвращает строку плана по ее естественному ключу
// (план, имя, категория, пользователь).
func (r *ItemRepository) FindByNaturalKey(ctx context.Context, userID, planID uuid.UUID, name string, categoryID uuid.UUID) (models.PaymentItem, error) {
	return scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemColumns+`
		 FROM payment_items
		 WHERE month_plan_id = $1 AND name = $2 AND category_id = $3 AND user_id = $4`,
		planID, name, categoryID, userID,
	))
}

// Create добавляет строку плана. Дубликат по естественному ключу
// отклоняется уникальным индексом.
func (r *ItemRepository) Create(ctx context.Context, item models.PaymentItem) (models.PaymentItem, error) {
	created, err := scanItem(r.db.QueryRow(ctx,
		`INSERT INTO payment_items (user_id, month_plan_id, category_id, name, planned_amount_cents, actual_amount_cents, is_paid, notes, priority)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+itemColumns,
		item.UserID, item.MonthPlanID, item.CategoryID, item.Name,
		item.PlannedAmountCents, item.ActualAmountCents, item.IsPaid, item.Notes, item.Priority,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return created, ErrConflict
			case "23503":
				return created, ErrNotFound
			}
		}
		return created, err
	}

	return created, nil
}

// ListByPlan возвращает строки плана в порядке категорий, затем по имени.
func (r *ItemRepository) ListByPlan(ctx context.Context, userID, planID uuid.UUID) ([]models.PaymentItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT i.id, i.user_id, i.month_plan_id, i.category_id, i.name,
		        i.planned_amount_cents, i.actual_amount_cents, i.is_paid, i.notes, i.priority,
		        i.created_at, i.updated_at
		 FROM payment_items i
		 JOIN categories c ON c.id = i.category_id
		 WHERE i.month_plan_id = $1 AND i.user_id = $2
		 ORDER BY c.sort_order, c.name, i.name`,
		planID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PaymentItem
	for rows.Next() {
		var item models.PaymentItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.MonthPlanID, &item.CategoryID, &item.Name,
			&item.PlannedAmountCents, &item.ActualAmountCents, &item.IsPaid, &item.Notes, &item.Priority,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Update изменяет строку плана пользователя.
func (r *ItemRepository) Update(ctx context.Context, userID, itemID uuid.UUID, name string, plannedAmountCents, actualAmountCents int64, isPaid bool, notes *string, priority *models.Priority) (models.PaymentItem, error) {
	item, err := scanItem(r.db.QueryRow(ctx,
		`UPDATE payment_items
		 SET name = $3,
		     planned_amount_cents = $4,
		     actual_amount_cents = $5,
		     is_paid = $6,
		     notes = $7,
		     priority = $8,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+itemColumns,
		itemID, userID, name, plannedAmountCents, actualAmountCents, isPaid, notes, priority,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return item, ErrConflict
		}
		return item, err
	}

	return item, nil
}

// Delete удаляет строку плана пользователя.
func (r *ItemRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM payment_items WHERE id = $1 AND user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
