package planning

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/repository"
)

type fakePlans struct {
	plans map[string]models.MonthPlan
}

func newFakePlans() *fakePlans {
	return &fakePlans{plans: make(map[string]models.MonthPlan)}
}

func (f *fakePlans) key(userID uuid.UUID, monthKey string) string {
	return userID.String() + "|" + monthKey
}

func (f *fakePlans) GetByUserAndMonth(_ context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error) {
	plan, ok := f.plans[f.key(userID, monthKey)]
	if !ok {
		return models.MonthPlan{}, repository.ErrNotFound
	}
	return plan, nil
}

func (f *fakePlans) GetOrCreate(_ context.Context, userID uuid.UUID, monthKey string) (models.MonthPlan, error) {
	if plan, ok := f.plans[f.key(userID, monthKey)]; ok {
		return plan, nil
	}
	plan := models.MonthPlan{
		ID:        uuid.New(),
		UserID:    userID,
		MonthKey:  monthKey,
		CreatedAt: time.Now(),
	}
	f.plans[f.key(userID, monthKey)] = plan
	return plan, nil
}

func (f *fakePlans) GetByID(_ context.Context, userID, planID uuid.UUID) (models.MonthPlan, error) {
	for _, plan := range f.plans {
		if plan.ID == planID && plan.UserID == userID {
			return plan, nil
		}
	}
	return models.MonthPlan{}, repository.ErrNotFound
}

type fakeItems struct {
	items map[uuid.UUID]models.PaymentItem
	// createConflicts имитирует проигрыш гонки за вставку: Create для этих
	// имен отвечает ErrConflict, как будто строку уже вставил конкурент.
	createConflicts map[string]bool
}

func newFakeItems() *fakeItems {
	return &fakeItems{items: make(map[uuid.UUID]models.PaymentItem)}
}

func (f *fakeItems) FindByNaturalKey(_ context.Context, userID, planID uuid.UUID, name string, categoryID uuid.UUID) (models.PaymentItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.MonthPlanID == planID && item.Name == name && item.CategoryID == categoryID {
			return item, nil
		}
	}
	return models.PaymentItem{}, repository.ErrNotFound
}

func (f *fakeItems) Create(_ context.Context, item models.PaymentItem) (models.PaymentItem, error) {
	if f.createConflicts[item.Name] {
		return models.PaymentItem{}, repository.ErrConflict
	}
	for _, existing := range f.items {
		if existing.UserID == item.UserID && existing.MonthPlanID == item.MonthPlanID &&
			existing.Name == item.Name && existing.CategoryID == item.CategoryID {
			return models.PaymentItem{}, repository.ErrConflict
		}
	}
	item.ID = uuid.New()
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeItems) ListByPlan(_ context.Context, userID, planID uuid.UUID) ([]models.PaymentItem, error) {
	var result []models.PaymentItem
	for _, item := range f.items {
		if item.UserID == userID && item.MonthPlanID == planID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeItems) Update(_ context.Context, userID, itemID uuid.UUID, name string, plannedAmountCents, actualAmountCents int64, isPaid bool, notes *string, priority *models.Priority) (models.PaymentItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.UserID != userID {
		return models.PaymentItem{}, repository.ErrNotFound
	}
	item.Name = name
	item.PlannedAmountCents = plannedAmountCents
	item.ActualAmountCents = actualAmountCents
	item.IsPaid = isPaid
	item.Notes = notes
	item.Priority = priority
	f.items[itemID] = item
	return item, nil
}

func (f *fakeItems) Delete(_ context.Context, userID, itemID uuid.UUID) error {
	item, ok := f.items[itemID]
	if !ok || item.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.items, itemID)
	return nil
}

type fakePayments struct {
	payments []models.RegularPayment
}

func (f *fakePayments) ListByUser(_ context.Context, userID uuid.UUID) ([]models.RegularPayment, error) {
	var result []models.RegularPayment
	for _, p := range f.payments {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

type fakeCategories struct {
	names map[uuid.UUID]string
	err   error
}

func (f *fakeCategories) NamesByUser(_ context.Context, _ uuid.UUID) (map[uuid.UUID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

type fakeSalaries struct {
	salaries map[string]int64
}

func newFakeSalaries() *fakeSalaries {
	return &fakeSalaries{salaries: make(map[string]int64)}
}

func (f *fakeSalaries) GetByUserAndMonth(_ context.Context, userID uuid.UUID, monthKey string) (models.Salary, error) {
	amount, ok := f.salaries[userID.String()+"|"+monthKey]
	if !ok {
		return models.Salary{}, repository.ErrNotFound
	}
	return models.Salary{UserID: userID, MonthKey: monthKey, AmountCents: amount}, nil
}

func (f *fakeSalaries) Upsert(_ context.Context, userID uuid.UUID, monthKey string, amountCents int64) error {
	f.salaries[userID.String()+"|"+monthKey] = amountCents
	return nil
}

type testEnv struct {
	service    *Service
	plans      *fakePlans
	items      *fakeItems
	payments   *fakePayments
	categories *fakeCategories
	salaries   *fakeSalaries
	userID     uuid.UUID
}

func newTestEnv() *testEnv {
	plans := newFakePlans()
	items := newFakeItems()
	payments := &fakePayments{}
	categories := &fakeCategories{names: make(map[uuid.UUID]string)}
	salaries := newFakeSalaries()

	return &testEnv{
		service:    NewService(plans, items, payments, categories, salaries, nil),
		plans:      plans,
		items:      items,
		payments:   payments,
		categories: categories,
		salaries:   salaries,
		userID:     uuid.New(),
	}
}

func (e *testEnv) addPayment(name string, amountCents int64, active bool, start, end *time.Time) models.RegularPayment {
	categoryID := uuid.New()
	e.categories.names[categoryID] = name + " category"
	payment := models.RegularPayment{
		ID:                        uuid.New(),
		UserID:                    e.userID,
		CategoryID:                categoryID,
		Name:                      name,
		DefaultPlannedAmountCents: amountCents,
		Frequency:                 models.FrequencyMonthly,
		IsActive:                  active,
		StartDate:                 start,
		EndDate:                   end,
	}
	e.payments.payments = append(e.payments.payments, payment)
	return payment
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// TestGenerateMonthPlanMaterializesActive проверяет, что в план попадают
// только активные в окне месяца регулярные платежи.
func TestGenerateMonthPlanMaterializesActive(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Rent", 50000, true, nil, nil)
	env.addPayment("Old gym", 3000, true, nil, datePtr(2024, time.December, 31))
	env.addPayment("Future course", 10000, true, datePtr(2025, time.June, 1), nil)
	env.addPayment("Disabled", 7000, false, nil, nil)

	planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("GenerateMonthPlan вернул ошибку: %v", err)
	}

	items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
	if len(items) != 1 {
		t.Fatalf("в плане %d строк, ожидали 1", len(items))
	}
	if items[0].Name != "Rent" || items[0].PlannedAmountCents != 50000 {
		t.Errorf("неожиданная строка плана: %+v", items[0])
	}
	if items[0].ActualAmountCents != 0 || items[0].IsPaid {
		t.Errorf("материализованная строка должна быть неоплаченной с нулевым фактом: %+v", items[0])
	}
}

// TestGenerateMonthPlanConcurrentInsert проверяет, что проигрыш гонки за
// вставку одной строки не прерывает материализацию остальных.
func TestGenerateMonthPlanConcurrentInsert(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Rent", 50000, true, nil, nil)
	env.addPayment("Internet", 1500, true, nil, nil)
	env.items.createConflicts = map[string]bool{"Rent": true}

	planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("GenerateMonthPlan вернул ошибку: %v", err)
	}

	items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
	if len(items) != 1 {
		t.Fatalf("в плане %d строк, ожидали 1", len(items))
	}
	if items[0].Name != "Internet" {
		t.Errorf("ожидали строку Internet, получили: %+v", items[0])
	}
}

// TestGenerateMonthPlanBoundaryMonths проверяет включение платежа в граничные
// месяцы его окна действия.
func TestGenerateMonthPlanBoundaryMonths(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Subscription", 1500, true, datePtr(2025, time.February, 15), datePtr(2025, time.April, 10))

	tests := []struct {
		monthKey string
		want     int
	}{
		{"2025-01", 0},
		{"2025-02", 1},
		{"2025-03", 1},
		{"2025-04", 1},
		{"2025-05", 0},
	}

	for _, tt := range tests {
		planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, tt.monthKey)
		if err != nil {
			t.Fatalf("GenerateMonthPlan(%s) вернул ошибку: %v", tt.monthKey, err)
		}
		items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
		if len(items) != tt.want {
			t.Errorf("%s: в плане %d строк, ожидали %d", tt.monthKey, len(items), tt.want)
		}
	}
}

// TestGenerateMonthPlanIdempotent проверяет, что повторная генерация
// не создает дубликатов и не трогает ручные правки.
func TestGenerateMonthPlanIdempotent(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Rent", 50000, true, nil, nil)

	planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("первая генерация вернула ошибку: %v", err)
	}

	items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
	if len(items) != 1 {
		t.Fatalf("в плане %d строк, ожидали 1", len(items))
	}

	// Пользователь отметил оплату и поправил сумму.
	updated, err := env.service.UpdateItem(context.Background(), env.userID, items[0].ID, ItemUpdate{
		Name:               items[0].Name,
		PlannedAmountCents: 52000,
		ActualAmountCents:  52000,
		IsPaid:             true,
	})
	if err != nil {
		t.Fatalf("UpdateItem вернул ошибку: %v", err)
	}

	planID2, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("повторная генерация вернула ошибку: %v", err)
	}
	if planID2 != planID {
		t.Errorf("повторная генерация вернула другой план: %s != %s", planID2, planID)
	}

	items, _ = env.items.ListByPlan(context.Background(), env.userID, planID)
	if len(items) != 1 {
		t.Fatalf("после повторной генерации %d строк, ожидали 1", len(items))
	}
	if items[0].PlannedAmountCents != updated.PlannedAmountCents || !items[0].IsPaid {
		t.Errorf("повторная генерация затерла ручные правки: %+v", items[0])
	}
}

// TestGenerateMonthPlanPicksUpNewDefinitions проверяет, что платеж,
// добавленный после первой генерации, попадает в план при следующей.
func TestGenerateMonthPlanPicksUpNewDefinitions(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Rent", 50000, true, nil, nil)

	planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("первая генерация вернула ошибку: %v", err)
	}

	env.addPayment("Internet", 800, true, nil, nil)

	if _, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-03"); err != nil {
		t.Fatalf("повторная генерация вернула ошибку: %v", err)
	}

	items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
	if len(items) != 2 {
		t.Fatalf("после добавления платежа в плане %d строк, ожидали 2", len(items))
	}
}

// TestGenerateMonthPlanIgnoresFrequency проверяет, что частота платежа
// не влияет на отбор: годовой платеж материализуется в каждом месяце окна.
func TestGenerateMonthPlanIgnoresFrequency(t *testing.T) {
	env := newTestEnv()
	payment := env.addPayment("Insurance", 12000, true, nil, nil)
	env.payments.payments[0].Frequency = models.FrequencyYearly
	_ = payment

	for _, key := range []string{"2025-01", "2025-02", "2025-03"} {
		planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, key)
		if err != nil {
			t.Fatalf("GenerateMonthPlan(%s) вернул ошибку: %v", key, err)
		}
		items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
		if len(items) != 1 {
			t.Errorf("%s: годовой платеж не материализован", key)
		}
	}
}

// TestGenerateMonthPlanInvalidKey проверяет отклонение некорректного ключа.
func TestGenerateMonthPlanInvalidKey(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.GenerateMonthPlan(context.Background(), env.userID, "2025-3")
	if err == nil {
		t.Fatal("ожидали ошибку для некорректного ключа месяца")
	}
}

// TestGetMonthPlanEnrichesCategoryNames проверяет подстановку имен категорий
// в строки плана.
func TestGetMonthPlanEnrichesCategoryNames(t *testing.T) {
	env := newTestEnv()
	payment := env.addPayment("Rent", 50000, true, nil, nil)

	detail, err := env.service.GetMonthPlan(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("GetMonthPlan вернул ошибку: %v", err)
	}

	if detail.Plan.MonthKey != "2025-03" {
		t.Errorf("ключ плана %s, ожидали 2025-03", detail.Plan.MonthKey)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("в плане %d строк, ожидали 1", len(detail.Items))
	}
	want := env.categories.names[payment.CategoryID]
	if detail.Items[0].CategoryName != want {
		t.Errorf("имя категории %q, ожидали %q", detail.Items[0].CategoryName, want)
	}
}

// TestAddManualItemChecksOwnership проверяет, что строку нельзя добавить
// в чужой план.
func TestAddManualItemChecksOwnership(t *testing.T) {
	env := newTestEnv()
	plan, _ := env.plans.GetOrCreate(context.Background(), env.userID, "2025-03")

	stranger := uuid.New()
	_, err := env.service.AddManualItem(context.Background(), stranger, NewItem{
		MonthPlanID:        plan.ID,
		CategoryID:         uuid.New(),
		Name:               "Sneaky",
		PlannedAmountCents: 100,
	})
	if err != repository.ErrNotFound {
		t.Errorf("ожидали ErrNotFound для чужого плана, получили %v", err)
	}
}

// TestAddManualItemRejectsNegativeAmounts проверяет валидацию сумм.
func TestAddManualItemRejectsNegativeAmounts(t *testing.T) {
	env := newTestEnv()
	plan, _ := env.plans.GetOrCreate(context.Background(), env.userID, "2025-03")

	_, err := env.service.AddManualItem(context.Background(), env.userID, NewItem{
		MonthPlanID:        plan.ID,
		CategoryID:         uuid.New(),
		Name:               "Bad",
		PlannedAmountCents: -1,
	})
	if err == nil {
		t.Fatal("ожидали ошибку для отрицательной суммы")
	}
}

// TestLastSixMonthsSummary проверяет форму сводки: ровно шесть записей
// от старых к новым, нули для несгенерированных месяцев.
func TestLastSixMonthsSummary(t *testing.T) {
	env := newTestEnv()
	env.addPayment("Rent", 50000, true, nil, nil)

	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	// Сгенерированы только два месяца из шести.
	for _, key := range []string{"2025-04", "2025-06"} {
		planID, err := env.service.GenerateMonthPlan(context.Background(), env.userID, key)
		if err != nil {
			t.Fatalf("GenerateMonthPlan(%s) вернул ошибку: %v", key, err)
		}
		items, _ := env.items.ListByPlan(context.Background(), env.userID, planID)
		if _, err := env.service.UpdateItem(context.Background(), env.userID, items[0].ID, ItemUpdate{
			Name:               items[0].Name,
			PlannedAmountCents: items[0].PlannedAmountCents,
			ActualAmountCents:  48000,
			IsPaid:             true,
		}); err != nil {
			t.Fatalf("UpdateItem вернул ошибку: %v", err)
		}
	}

	summaries, err := env.service.LastSixMonthsSummary(context.Background(), env.userID, now)
	if err != nil {
		t.Fatalf("LastSixMonthsSummary вернул ошибку: %v", err)
	}

	wantKeys := []string{"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06"}
	if len(summaries) != len(wantKeys) {
		t.Fatalf("в сводке %d записей, ожидали %d", len(summaries), len(wantKeys))
	}

	for i, want := range wantKeys {
		if summaries[i].MonthKey != want {
			t.Errorf("сводка[%d].MonthKey = %s, ожидали %s", i, summaries[i].MonthKey, want)
		}
	}

	for _, s := range summaries {
		switch s.MonthKey {
		case "2025-04", "2025-06":
			if s.TotalPlannedCents != 50000 || s.TotalActualCents != 48000 {
				t.Errorf("%s: planned=%d actual=%d, ожидали 50000/48000", s.MonthKey, s.TotalPlannedCents, s.TotalActualCents)
			}
		default:
			if s.TotalPlannedCents != 0 || s.TotalActualCents != 0 {
				t.Errorf("%s: несгенерированный месяц должен быть нулевым: %+v", s.MonthKey, s)
			}
		}
	}

	// Сводка не должна материализовать планы.
	for _, key := range []string{"2025-01", "2025-02", "2025-03", "2025-05"} {
		if _, err := env.plans.GetByUserAndMonth(context.Background(), env.userID, key); err != repository.ErrNotFound {
			t.Errorf("сводка создала план на %s", key)
		}
	}
}

// TestCategoryExpenses проверяет группировку трат по категориям,
// отбрасывание нулевых сумм и сортировку по убыванию.
func TestCategoryExpenses(t *testing.T) {
	env := newTestEnv()
	plan, _ := env.plans.GetOrCreate(context.Background(), env.userID, "2025-03")

	food := uuid.New()
	transport := uuid.New()
	unpaid := uuid.New()
	env.categories.names[food] = "Food"
	env.categories.names[transport] = "Transport"
	env.categories.names[unpaid] = "Unpaid"

	add := func(categoryID uuid.UUID, name string, actual int64) {
		if _, err := env.items.Create(context.Background(), models.PaymentItem{
			UserID:            env.userID,
			MonthPlanID:       plan.ID,
			CategoryID:        categoryID,
			Name:              name,
			ActualAmountCents: actual,
		}); err != nil {
			t.Fatalf("не удалось добавить строку: %v", err)
		}
	}

	add(food, "Groceries", 12000)
	add(food, "Restaurant", 4000)
	add(transport, "Metro", 2000)
	add(unpaid, "Planned only", 0)

	expenses, err := env.service.CategoryExpenses(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("CategoryExpenses вернул ошибку: %v", err)
	}

	want := []CategoryExpense{
		{CategoryName: "Food", TotalActualCents: 16000},
		{CategoryName: "Transport", TotalActualCents: 2000},
	}
	if len(expenses) != len(want) {
		t.Fatalf("получили %d категорий, ожидали %d: %+v", len(expenses), len(want), expenses)
	}
	for i := range want {
		if expenses[i] != want[i] {
			t.Errorf("expenses[%d] = %+v, ожидали %+v", i, expenses[i], want[i])
		}
	}
}

// TestCategoryExpensesUnknownCategory проверяет подстановку Unknown
// при недоступном имени категории.
func TestCategoryExpensesUnknownCategory(t *testing.T) {
	env := newTestEnv()
	plan, _ := env.plans.GetOrCreate(context.Background(), env.userID, "2025-03")

	if _, err := env.items.Create(context.Background(), models.PaymentItem{
		UserID:            env.userID,
		MonthPlanID:       plan.ID,
		CategoryID:        uuid.New(),
		Name:              "Orphan",
		ActualAmountCents: 500,
	}); err != nil {
		t.Fatalf("не удалось добавить строку: %v", err)
	}
	env.categories.err = fmt.Errorf("boom")

	expenses, err := env.service.CategoryExpenses(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("CategoryExpenses вернул ошибку: %v", err)
	}
	if len(expenses) != 1 || expenses[0].CategoryName != "Unknown" {
		t.Errorf("ожидали одну категорию Unknown, получили %+v", expenses)
	}
}

// TestCategoryExpensesNoPlan проверяет пустой ответ для месяца без плана.
func TestCategoryExpensesNoPlan(t *testing.T) {
	env := newTestEnv()

	expenses, err := env.service.CategoryExpenses(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("CategoryExpenses вернул ошибку: %v", err)
	}
	if expenses == nil || len(expenses) != 0 {
		t.Errorf("ожидали пустой срез, получили %+v", expenses)
	}
	if _, err := env.plans.GetByUserAndMonth(context.Background(), env.userID, "2025-03"); err != repository.ErrNotFound {
		t.Error("запрос трат не должен создавать план")
	}
}

// TestSalaryDefaultsToZero проверяет, что отсутствующий доход читается
// как ноль и записи не создает.
func TestSalaryDefaultsToZero(t *testing.T) {
	env := newTestEnv()

	salary, err := env.service.Salary(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("Salary вернул ошибку: %v", err)
	}
	if salary.AmountCents != 0 || salary.MonthKey != "2025-03" {
		t.Errorf("ожидали нулевой доход за 2025-03, получили %+v", salary)
	}
	if len(env.salaries.salaries) != 0 {
		t.Error("чтение дохода не должно создавать запись")
	}
}

// TestSaveSalaryUpsert проверяет перезапись дохода за месяц.
func TestSaveSalaryUpsert(t *testing.T) {
	env := newTestEnv()

	if err := env.service.SaveSalary(context.Background(), env.userID, "2025-03", 300000); err != nil {
		t.Fatalf("SaveSalary вернул ошибку: %v", err)
	}
	if err := env.service.SaveSalary(context.Background(), env.userID, "2025-03", 310000); err != nil {
		t.Fatalf("повторный SaveSalary вернул ошибку: %v", err)
	}

	salary, err := env.service.Salary(context.Background(), env.userID, "2025-03")
	if err != nil {
		t.Fatalf("Salary вернул ошибку: %v", err)
	}
	if salary.AmountCents != 310000 {
		t.Errorf("доход %d, ожидали 310000", salary.AmountCents)
	}
	if len(env.salaries.salaries) != 1 {
		t.Errorf("ожидали одну запись дохода, получили %d", len(env.salaries.salaries))
	}
}

// TestSaveSalaryRejectsNegative проверяет валидацию суммы дохода.
func TestSaveSalaryRejectsNegative(t *testing.T) {
	env := newTestEnv()

	if err := env.service.SaveSalary(context.Background(), env.userID, "2025-03", -1); err == nil {
		t.Fatal("ожидали ошибку для отрицательного дохода")
	}
}
