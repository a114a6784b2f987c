package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

type EmailChangeRepository struct {
	db *pgxpool.Pool
}

// NewEmailChangeRepository создает репозиторий запросов смены email.
func NewEmailChangeRepository(db *pgxpool.Pool) *EmailChangeRepository {
	return &EmailChangeRepository{db: db}
}

// Upsert создает или заменяет запрос смены email; активен не более одного
// запроса на пользователя.
func (r *EmailChangeRepository) Upsert(ctx context.Context, req models.EmailChangeRequest) (models.EmailChangeRequest, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO email_change_requests (user_id, new_email, otp_code, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET new_email = EXCLUDED.new_email,
		     otp_code = EXCLUDED.otp_code,
		     expires_at = EXCLUDED.expires_at,
		     created_at = NOW()
		 RETURNING id, user_id, new_email, otp_code, expires_at, created_at`,
		req.UserID, req.NewEmail, req.OTPCode, req.ExpiresAt,
	).Scan(&req.ID, &req.UserID, &req.NewEmail, &req.OTPCode, &req.ExpiresAt, &req.CreatedAt)

	return req, err
}

// GetByUser возвращает активный запрос смены email пользователя.
func (r *EmailChangeRepository) GetByUser(ctx context.Context, userID uuid.UUID) (models.EmailChangeRequest, error) {
	var req models.EmailChangeRequest

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, new_email, otp_code, expires_at, created_at
		 FROM email_change_requests
		 WHERE user_id = $1`,
		userID,
	).Scan(&req.ID, &req.UserID, &req.NewEmail, &req.OTPCode, &req.ExpiresAt, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return req, ErrNotFound
		}
		return req, err
	}

	return req, nil
}

// Delete удаляет запрос смены email после подтверждения или отмены.
func (r *EmailChangeRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM email_change_requests WHERE user_id = $1`, userID)
	return err
}
