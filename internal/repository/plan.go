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

type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository создает репозиторий планов месяца.
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row pgx.Row) (models.MonthPlan, error) {
	var plan models.MonthPlan
	err := row.Scan(&plan.ID, &plan.UserID, &plan.MonthKey, &plan.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan, ErrNotFound
		}
		return plan, err
	}

	return plan, nil
}

// GetByUserAndMonth возвращает план пользователя за месяц.
func (r *PlanRepository) GetByUserAndMonth(ctx context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error) {
	return scanPlan(r.db.QueryRow(ctx,
		`SELECT id, user_id, month_key, created_at
		 FROM month_plans
		 WHERE user_id = $1 AND month_key = $2`,
		userID, monthKey,
	))
}

// GetOrCreate возвращает план за месяц, создавая его при отсутствии.
// Конкурентную вставку разрешает уникальный индекс (user_id, month_key):
// проигравший повторно читает существующую строку.
func (r *PlanRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error) {
	plan, err := r.GetByUserAndMonth(ctx, userID, monthKey)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return plan, err
	}

	plan, err = scanPlan(r.db.QueryRow(ctx,
		`INSERT INTO month_plans (user_id, month_key)
		 VALUES ($1, $2)
		 RETURNING id, user_id, month_key, created_at`,
		userID, monthKey,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.GetByUserAndMonth(ctx, userID, monthKey)
		}
		return plan, err
	}

	return plan, nil
}

// GetByID возвращает план пользователя по идентификатору.
func (r *PlanRepository) GetByID(ctx context.Context, userID, planID uuid.UUID) (models.MonthPlan, error) {
	return scanPlan(r.db.QueryRow(ctx,
		`SELECT id, user_id, month_key, created_at
		 FROM month_plans
		 WHERE id = $1 AND user_id = $2`,
		planID, userID,
	))
}
