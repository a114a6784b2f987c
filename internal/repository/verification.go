package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vishnu-krishnan/expenze/internal/models"
)

const verificationColumns = `id, email, username, password_hash, phone, otp_code, expires_at, delivery_status, delivery_error, created_at`

type VerificationRepository struct {
	db *pgxpool.Pool
}

// NewVerificationRepository создает репозиторий незавершенных регистраций.
func NewVerificationRepository(db *pgxpool.Pool) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func scanVerification(row pgx.Row) (models.UserVerification, error) {
	var v models.UserVerification
	err := row.Scan(&v.ID, &v.Email, &v.Username, &v.PasswordHash, &v.Phone,
		&v.OTPCode, &v.ExpiresAt, &v.DeliveryStatus, &v.DeliveryError, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return v, ErrNotFound
		}
		return v, err
	}

	return v, nil
}

// Upsert создает или перезаписывает незавершенную регистрацию по email.
// Повторный запрос регистрации заменяет старый OTP новым.
func (r *VerificationRepository) Upsert(ctx context.Context, v models.UserVerification) (models.UserVerification, error) {
	return scanVerification(r.db.QueryRow(ctx,
		`INSERT INTO user_verifications (email, username, password_hash, phone, otp_code, expires_at, delivery_status, delivery_error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (email) DO UPDATE
		 SET username = EXCLUDED.username,
		     password_hash = EXCLUDED.password_hash,
		     phone = EXCLUDED.phone,
		     otp_code = EXCLUDED.otp_code,
		     expires_at = EXCLUDED.expires_at,
		     delivery_status = EXCLUDED.delivery_status,
		     delivery_error = EXCLUDED.delivery_error,
		     created_at = NOW()
		 RETURNING `+verificationColumns,
		v.Email, v.Username, v.PasswordHash, v.Phone, v.OTPCode, v.ExpiresAt, v.DeliveryStatus, v.DeliveryError,
	))
}

// GetByEmail возвращает незавершенную регистрацию по email.
func (r *VerificationRepository) GetByEmail(ctx context.Context, email string) (models.UserVerification, error) {
	return scanVerification(r.db.QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM user_verifications WHERE email = $1`,
		email,
	))
}

// UpdateOTP выдает новый код с новым сроком действия.
func (r *VerificationRepository) UpdateOTP(ctx context.Context, id uuid.UUID, otpCode string, expiresAt time.Time) error {
	cmd, err := r.db.Exec(ctx,
		`UPDATE user_verifications
		 SET otp_code = $2,
		     expires_at = $3,
		     delivery_status = 'pending',
		     delivery_error = NULL
		 WHERE id = $1`,
		id, otpCode, expiresAt,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkDelivery фиксирует результат отправки OTP.
func (r *VerificationRepository) MarkDelivery(ctx context.Context, id uuid.UUID, status string, deliveryError *string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE user_verifications
		 SET delivery_status = $2,
		     delivery_error = $3
		 WHERE id = $1`,
		id, status, deliveryError,
	)

	return err
}

// Delete удаляет незавершенную регистрацию после подтверждения.
func (r *VerificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_verifications WHERE id = $1`, id)
	return err
}

// DeleteExpired вычищает просроченные регистрации.
func (r *VerificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM user_verifications WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}

	return cmd.RowsAffected(), nil
}
