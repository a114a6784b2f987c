package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

type Priority string

type Frequency string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"

	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"

	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyYearly  Frequency = "YEARLY"
)

type User struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Phone              *string   `json:"phone,omitempty"`
	Role               Role      `json:"role"`
	DefaultBudgetCents int64     `json:"default_budget_cents"`
	IsVerified         bool      `json:"is_verified"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserVerification хранит незавершенную регистрацию до подтверждения OTP.
type UserVerification struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Phone          *string   `json:"phone,omitempty"`
	OTPCode        string    `json:"-"`
	ExpiresAt      time.Time `json:"expires_at"`
	DeliveryStatus string    `json:"delivery_status"`
	DeliveryError  *string   `json:"delivery_error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type EmailChangeRequest struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	NewEmail  string    `json:"new_email"`
	OTPCode   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Icon      *string   `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type CategoryTemplate struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	CategoryID uuid.UUID `json:"category_id"`
	SubOption  string    `json:"sub_option"`
	SortOrder  int       `json:"sort_order"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// RegularPayment описывает регулярное обязательство с опциональным окном действия.
// Frequency хранится как справочный признак и на отбор не влияет.
type RegularPayment struct {
	ID                        uuid.UUID  `json:"id"`
	UserID                    uuid.UUID  `json:"user_id"`
	CategoryID                uuid.UUID  `json:"category_id"`
	Name                      string     `json:"name"`
	DefaultPlannedAmountCents int64      `json:"default_planned_amount_cents"`
	Notes                     *string    `json:"notes,omitempty"`
	StartDate                 *time.Time `json:"start_date,omitempty"`
	EndDate                   *time.Time `json:"end_date,omitempty"`
	Frequency                 Frequency  `json:"frequency"`
	IsActive                  bool       `json:"is_active"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// MonthPlan — контейнер строк на месяц; ровно один на пару (user, month_key).
type MonthPlan struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MonthKey  string    `json:"month_key"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentItem struct {
	ID                 uuid.UUID `json:"id"`
	UserID             uuid.UUID `json:"user_id"`
	MonthPlanID        uuid.UUID `json:"month_plan_id"`
	CategoryID         uuid.UUID `json:"category_id"`
	Name               string    `json:"name"`
	PlannedAmountCents int64     `json:"planned_amount_cents"`
	ActualAmountCents  int64     `json:"actual_amount_cents"`
	IsPaid             bool      `json:"is_paid"`
	Notes              *string   `json:"notes,omitempty"`
	Priority           *Priority `json:"priority,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Salary struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	MonthKey    string    `json:"month_key"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SystemSetting struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	SettingType string    `json:"setting_type"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	IsPublic    bool      `json:"is_public"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
