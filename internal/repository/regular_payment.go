package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const regularPaymentColumns = `id, user_id, category_id, name, default_planned_amount_cents, notes, start_date, end_date, frequency, is_active, created_at, updated_at`

type RegularPaymentRepository struct {
	db *pgxpool.Pool
}

// NewRegularPaymentRepository создает репозиторий регулярных платежей.
func NewRegularPaymentRepository(db *pgxpool.Pool) *RegularPaymentRepository {
	return &RegularPaymentRepository{db: db}
}

func scanRegularPayment(row pgx.Row) (models.RegularPayment, error) {
	var p models.RegularPayment
	err := row.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Name, &p.DefaultPlannedAmountCents,
		&p.Notes, &p.StartDate, &p.EndDate, &p.Frequency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, err
	}

	return p, nil
}

// ListByUser возвращает все регулярные платежи пользователя.
func (r *RegularPaymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RegularPayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+regularPaymentColumns+`
		 FROM regular_payments
		 WHERE user_id = $1
		 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.RegularPayment
	for rows.Next() {
		var p models.RegularPayment
		if err := rows.Scan(&p.ID, &p.UserID, &p.CategoryID, &p.Name, &p.DefaultPlannedAmountCents,
			&p.Notes, &p.StartDate, &p.EndDate, &p.Frequency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// GetByID возвращает регулярный платеж пользователя.
func (r *RegularPaymentRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.RegularPayment, error) {
	return scanRegularPayment(r.db.QueryRow(ctx,
		`SELECT `+regularPaymentColumns+`
		 FROM regular_payments
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
}

// Create добавляет регулярный платеж.
func (r *RegularPaymentRepository) Create(ctx context.Context, p models.RegularPayment) (models.RegularPayment, error) {
	return scanRegularPayment(r.db.QueryRow(ctx,
		`INSERT INTO regular_payments (user_id, category_id, name, default_planned_amount_cents, notes, start_date, end_date, frequency, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+regularPaymentColumns,
		p.UserID, p.CategoryID, p.Name, p.DefaultPlannedAmountCents, p.Notes, p.StartDate, p.EndDate, p.Frequency, p.IsActive,
	))
}

// Update изменяет регулярный платеж пользователя.
func (r *RegularPaymentRepository) Update(ctx context.Context, userID, id uuid.UUID, p models.RegularPayment) (models.RegularPayment, error) {
	return scanRegularPayment(r.db.QueryRow(ctx,
		`UPDATE regular_payments
		 SET category_id = $3,
		     name = $4,
		     default_planned_amount_cents = $5,
		     notes = $6,
		     start_date = $7,
		     end_date = $8,
		     frequency = $9,
		     is_active = $10,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+regularPaymentColumns,
		id, userID, p.CategoryID, p.Name, p.DefaultPlannedAmountCents, p.Notes, p.StartDate, p.EndDate, p.Frequency, p.IsActive,
	))
}

// Delete удаляет регулярный платеж; уже материализованные строки планов
// остаются нетронутыми.
func (r *RegularPaymentRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM regular_payments WHERE id = $1 AND user_id = $2`,
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
