package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

type SalaryRepository struct {
	db *pgxpool.Pool
}

// NewSalaryRepository создает репозиторий доходов.
func NewSalaryRepository(db *pgxpool.Pool) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// GetByUserAndMonth возвращает доход пользователя за месяц.
func (r *SalaryRepository) GetByUserAndMonth(ctx context.Context, userID uuid.UUID, monthKey string) (models.Salary, error) {
	var salary models.Salary

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, month_key, amount_cents, created_at, updated_at
		 FROM salaries
		 WHERE user_id = $1 AND month_key = $2`,
		userID, monthKey,
	).Scan(&salary.ID, &salary.UserID, &salary.MonthKey, &salary.AmountCents, &salary.CreatedAt, &salary.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary, ErrNotFound
		}
		return salary, err
	}

	return salary, nil
}

// Upsert записывает доход за месяц, перезаписывая существующий.
func (r *SalaryRepository) Upsert(ctx context.Context, userID uuid.UUID, monthKey string, amountCents int64) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO salaries (user_id, month_key, amount_cents)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, month_key) DO UPDATE
		 SET amount_cents = EXCLUDED.amount_cents,
		     updated_at = NOW()`,
		userID, monthKey, amountCents,
	)

	return err
}
