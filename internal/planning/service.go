package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

// summaryMonths — горизонт трендовой сводки.
const summaryMonths = 6

const unknownCategoryName = "Unknown"

type MonthPlanStore interface {
	GetByUserAndMonth(ctx context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error)
	GetByID(ctx context.Context, userID, planID uuid.UUID) (models.MonthPlan, error)
}

type PaymentItemStore interface {
	FindByNaturalKey(ctx context.Context, userID, planID uuid.UUID, name string, categoryID uuid.UUID) (models.PaymentItem, error)
	Create(ctx context.Context, item models.PaymentItem) (models.PaymentItem, error)
	ListByPlan(ctx context.Context, userID, planID uuid.UUID) ([]models.PaymentItem, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, name string, plannedAmountCents, actualAmountCents int64, isPaid bool, notes *string, priority *models.Priority) (models.PaymentItem, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type RegularPaymentStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RegularPayment, error)
}

type CategoryStore interface {
	NamesByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type SalaryStore interface {
	GetByUserAndMonth(ctx context.Context, userID uuid.UUID, monthKey string) (models.Salary, error)
	Upsert(ctx context.Context, userID uuid.UUID, monthKey string, amountCents int64) error
}

// Service материализует планы месяца из регулярных платежей и считает сводки.
type Service struct {
	plans      MonthPlanStore
	items      PaymentItemStore
	payments   RegularPaymentStore
	categories CategoryStore
	salaries   SalaryStore
	logger     *slog.Logger
}

// NewService создает движок планирования.
func NewService(plans MonthPlanStore, items PaymentItemStore, payments RegularPaymentStore, categories CategoryStore, salaries SalaryStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		plans:      plans,
		items:      items,
		payments:   payments,
		categories: categories,
		salaries:   salaries,
		logger:     logger,
	}
}

type ItemDetail struct {
	models.PaymentItem
	CategoryName string `json:"category_name"`
}

type PlanDetail struct {
	Plan  models.MonthPlan `json:"plan"`
	Items []ItemDetail     `json:"items"`
}

type NewItem struct {
	MonthPlanID        uuid.UUID
	CategoryID         uuid.UUID
	Name               string
	PlannedAmountCents int64
	ActualAmountCents  int64
	IsPaid             bool
	Notes              *string
	Priority           *models.Priority
}

type ItemUpdate struct {
	Name               string
	PlannedAmountCents int64
	ActualAmountCents  int64
	IsPaid             bool
	Notes              *string
	Priority           *models.Priority
}

type MonthSummary struct {
	MonthKey          string `json:"month_key"`
	TotalPlannedCents int64  `json:"total_planned_cents"`
	TotalActualCents  int64  `json:"total_actual_cents"`
}

type CategoryExpense struct {
	CategoryName     string `json:"category_name"`
	TotalActualCents int64  `json:"total_actual_cents"`
}

type SalarySummary struct {
	MonthKey    string `json:"month_key"`
	AmountCents int64  `json:"amount_cents"`
}

// definitionActive сообщает, действует ли регулярный платеж в заданном окне.
// Частота намеренно не участвует в отборе: YEARLY-платеж материализуется
// каждый месяц своего окна так же, как MONTHLY.
func definitionActive(def models.RegularPayment, periodStart, periodEnd time.Time) bool {
	if !def.IsActive {
		return false
	}

	if def.StartDate != nil && def.StartDate.After(periodEnd) {
		return false
	}

	if def.EndDate != nil && def.EndDate.Before(periodStart) {
		return false
	}

	return true
}

// selectActive возвращает регулярные платежи, активные в заданном окне.
func (s *Service) selectActive(ctx context.Context, userID uuid.UUID, periodStart, periodEnd time.Time) ([]models.RegularPayment, error) {
	all, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]models.RegularPayment, 0, len(all))
	for _, def := range all {
		if definitionActive(def, periodStart, periodEnd) {
			active = append(active, def)
		}
	}

	return active, nil
}

// GenerateMonthPlan гарантирует план на месяц и идемпотентно достраивает его
// строками из активных регулярных платежей. Ручные правки не затрагиваются.
func (s *Service) GenerateMonthPlan(ctx context.Context, userID uuid.UUID, monthKey string) (uuid.UUID, error) {
	periodStart, periodEnd, err := MonthWindow(monthKey)
	if err != nil {
		return uuid.Nil, err
	}

	plan, err := s.plans.GetOrCreate(ctx, userID, monthKey)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure month plan: %w", err)
	}

	active, err := s.selectActive(ctx, userID, periodStart, periodEnd)
	if err != nil {
		return uuid.Nil, fmt.Errorf("select active regular payments: %w", err)
	}

	s.logger.Debug("materializing month plan",
		slog.String("user_id", userID.String()),
		slog.String("month_key", monthKey),
		slog.Int("active_definitions", len(active)),
	)

	for _, def := range active {
		_, err := s.items.FindByNaturalKey(ctx, userID, plan.ID, def.Name, def.CategoryID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("lookup payment item: %w", err)
		}

		_, err = s.items.Create(ctx, models.PaymentItem{
			UserID:             userID,
			MonthPlanID:        plan.ID,
			CategoryID:         def.CategoryID,
			Name:               def.Name,
			PlannedAmountCents: def.DefaultPlannedAmountCents,
		})
		if err != nil {
			// A concurrent generation already inserted this row.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return uuid.Nil, fmt.Errorf("materialize payment item: %w", err)
		}
	}

	return plan.ID, nil
}

// GetMonthPlan сначала достраивает план месяца, затем возвращает его строки
// с именами категорий.
func (s *Service) GetMonthPlan(ctx context.Context, userID uuid.UUID, monthKey string) (PlanDetail, error) {
	if _, err := s.GenerateMonthPlan(ctx, userID, monthKey); err != nil {
		return PlanDetail{}, err
	}

	plan, err := s.plans.GetByUserAndMonth(ctx, userID, monthKey)
	if err != nil {
		return PlanDetail{}, fmt.Errorf("load month plan: %w", err)
	}

	items, err := s.items.ListByPlan(ctx, userID, plan.ID)
	if err != nil {
		return PlanDetail{}, fmt.Errorf("list payment items: %w", err)
	}

	names, err := s.categories.NamesByUser(ctx, userID)
	if err != nil {
		return PlanDetail{}, fmt.Errorf("load category names: %w", err)
	}

	details := make([]ItemDetail, 0, len(items))
	for _, item := range items {
		details = append(details, ItemDetail{
			PaymentItem:  item,
			CategoryName: names[item.CategoryID],
		})
	}

	return PlanDetail{Plan: plan, Items: details}, nil
}

// AddManualItem добавляет ручную строку в план пользователя.
func (s *Service) AddManualItem(ctx context.Context, userID uuid.UUID, input NewItem) (uuid.UUID, error) {
	if input.PlannedAmountCents < 0 || input.ActualAmountCents < 0 {
		return uuid.Nil, fmt.Errorf("negative amount: %w", repository.ErrInvalid)
	}

	if _, err := s.plans.GetByID(ctx, userID, input.MonthPlanID); err != nil {
		return uuid.Nil, err
	}

	item, err := s.items.Create(ctx, models.PaymentItem{
		UserID:             userID,
		MonthPlanID:        input.MonthPlanID,
		CategoryID:         input.CategoryID,
		Name:               input.Name,
		PlannedAmountCents: input.PlannedAmountCents,
		ActualAmountCents:  input.ActualAmountCents,
		IsPaid:             input.IsPaid,
		Notes:              input.Notes,
		Priority:           input.Priority,
	})
	if err != nil {
		return uuid.Nil, err
	}

	return item.ID, nil
}

// UpdateItem обновляет строку плана; доступ ограничен владельцем.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, update ItemUpdate) (models.PaymentItem, error) {
	if update.PlannedAmountCents < 0 || update.ActualAmountCents < 0 {
		return models.PaymentItem{}, fmt.Errorf("negative amount: %w", repository.ErrInvalid)
	}

	return s.items.Update(ctx, userID, itemID, update.Name, update.PlannedAmountCents, update.ActualAmountCents, update.IsPaid, update.Notes, update.Priority)
}

// DeleteItem удаляет строку плана; доступ ограничен владельцем.
func (s *Service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.items.Delete(ctx, userID, itemID)
}

// LastSixMonthsSummary возвращает ровно шесть записей от старых к новым,
// заканчивая месяцем now. Несгенерированные месяцы остаются нулевыми:
// сводка читает только то, что уже материализовано.
func (s *Service) LastSixMonthsSummary(ctx context.Context, userID uuid.UUID, now time.Time) ([]MonthSummary, error) {
	summaries := make([]MonthSummary, 0, summaryMonths)

	for i := summaryMonths - 1; i >= 0; i-- {
		key := monthKeyOffset(now, -i)
		summary := MonthSummary{MonthKey: key}

		plan, err := s.plans.GetByUserAndMonth(ctx, userID, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				summaries = append(summaries, summary)
				continue
			}
			return nil, fmt.Errorf("load month plan %s: %w", key, err)
		}

		items, err := s.items.ListByPlan(ctx, userID, plan.ID)
		if err != nil {
			return nil, fmt.Errorf("list payment items %s: %w", key, err)
		}

		for _, item := range items {
			summary.TotalPlannedCents += item.PlannedAmountCents
			summary.TotalActualCents += item.ActualAmountCents
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// CategoryExpenses возвращает фактические траты месяца по категориям,
// отсортированные по убыванию. Категории с суммой <= 0 отбрасываются.
func (s *Service) CategoryExpenses(ctx context.Context, userID uuid.UUID, monthKey string) ([]CategoryExpense, error) {
	if _, err := ParseMonthKey(monthKey); err != nil {
		return nil, err
	}

	plan, err := s.plans.GetByUserAndMonth(ctx, userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []CategoryExpense{}, nil
		}
		return nil, fmt.Errorf("load month plan: %w", err)
	}

	items, err := s.items.ListByPlan(ctx, userID, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("list payment items: %w", err)
	}

	sums := make(map[uuid.UUID]int64)
	for _, item := range items {
		sums[item.CategoryID] += item.ActualAmountCents
	}

	names, err := s.categories.NamesByUser(ctx, userID)
	if err != nil {
		// Name resolution failure must not fail the whole call.
		s.logger.Warn("category name resolution failed", slog.String("error", err.Error()))
		names = map[uuid.UUID]string{}
	}

	expenses := make([]CategoryExpense, 0, len(sums))
	for categoryID, total := range sums {
		if total <= 0 {
			continue
		}

		name, ok := names[categoryID]
		if !ok {
			name = unknownCategoryName
		}

		expenses = append(expenses, CategoryExpense{
			CategoryName:     name,
			TotalActualCents: total,
		})
	}

	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].TotalActualCents > expenses[j].TotalActualCents
	})

	return expenses, nil
}

// Salary возвращает доход за месяц; отсутствие записи читается как ноль
// и записи не создает.
func (s *Service) Salary(ctx context.Context, userID uuid.UUID, monthKey string) (SalarySummary, error) {
	if _, err := ParseMonthKey(monthKey); err != nil {
		return SalarySummary{}, err
	}

	salary, err := s.salaries.GetByUserAndMonth(ctx, userID, monthKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return SalarySummary{MonthKey: monthKey}, nil
		}
		return SalarySummary{}, fmt.Errorf("load salary: %w", err)
	}

	return SalarySummary{MonthKey: monthKey, AmountCents: salary.AmountCents}, nil
}

// SaveSalary сохраняет доход за месяц; запись на пару (user, month) одна.
func (s *Service) SaveSalary(ctx context.Context, userID uuid.UUID, monthKey string, amountCents int64) error {
	if _, err := ParseMonthKey(monthKey); err != nil {
		return err
	}

	if amountCents < 0 {
		return fmt.Errorf("negative amount: %w", repository.ErrInvalid)
	}

	return s.salaries.Upsert(ctx, userID, monthKey, amountCents)
}
