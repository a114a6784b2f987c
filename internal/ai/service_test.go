package ai

import (
	"context"
	"errors"
	"testing"
)

type fakeClient struct {
	content string
	err     error
}

func (f *fakeClient) Chat(_ context.Context, _ []Message) (string, []byte, error) {
	return f.content, nil, f.err
}

// TestParseSMS проверяет разбор корректного ответа модели.
func TestParseSMS(t *testing.T) {
	client := &fakeClient{content: `{"expenses":[{"name":"Grocery store","amount_cents":125000,"category_suggestion":"Food","priority":"MEDIUM","raw_text":"Purchase 1250.00 GROCERY"}]}`}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "Purchase 1250.00 GROCERY")
	if err != nil {
		t.Fatalf("ParseSMS вернул ошибку: %v", err)
	}

	if len(response.Expenses) != 1 {
		t.Fatalf("распознано %d расходов, ожидали 1", len(response.Expenses))
	}
	expense := response.Expenses[0]
	if expense.Name != "Grocery store" || expense.AmountCents != 125000 {
		t.Errorf("неожиданный расход: %+v", expense)
	}
}

// TestParseSMSCodeFences проверяет срезание кодовых ограждений из ответа.
func TestParseSMSCodeFences(t *testing.T) {
	client := &fakeClient{content: "```json\n{\"expenses\":[{\"name\":\"Taxi\",\"amount_cents\":45000,\"category_suggestion\":\"Transport\",\"priority\":\"LOW\",\"raw_text\":\"TAXI 450.00\"}]}\n```"}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "TAXI 450.00")
	if err != nil {
		t.Fatalf("ParseSMS вернул ошибку: %v", err)
	}

	if len(response.Expenses) != 1 || response.Expenses[0].Name != "Taxi" {
		t.Errorf("неожиданный результат: %+v", response.Expenses)
	}
}

// TestParseSMSClientError проверяет деградацию до пустого результата
// при ошибке клиента.
func TestParseSMSClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("api down")}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "Purchase 100.00")
	if err != nil {
		t.Fatalf("ошибка клиента не должна пробрасываться: %v", err)
	}
	if response.Expenses == nil || len(response.Expenses) != 0 {
		t.Errorf("ожидали пустой результат, получили %+v", response.Expenses)
	}
}

// TestParseSMSMalformedJSON проверяет деградацию при некорректном JSON.
func TestParseSMSMalformedJSON(t *testing.T) {
	client := &fakeClient{content: "sorry, I cannot help with that"}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "Purchase 100.00")
	if err != nil {
		t.Fatalf("некорректный JSON не должен пробрасываться: %v", err)
	}
	if len(response.Expenses) != 0 {
		t.Errorf("ожидали пустой результат, получили %+v", response.Expenses)
	}
}

// TestParseSMSNormalization проверяет отбрасывание мусорных расходов
// и подстановку приоритета по умолчанию.
func TestParseSMSNormalization(t *testing.T) {
	client := &fakeClient{content: `{"expenses":[
		{"name":"","amount_cents":100,"priority":"HIGH","raw_text":"x"},
		{"name":"Zero","amount_cents":0,"priority":"HIGH","raw_text":"y"},
		{"name":"Coffee","amount_cents":30000,"priority":"urgent","raw_text":"COFFEE 300.00"}
	]}`}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "COFFEE 300.00")
	if err != nil {
		t.Fatalf("ParseSMS вернул ошибку: %v", err)
	}

	if len(response.Expenses) != 1 {
		t.Fatalf("распознано %d расходов, ожидали 1: %+v", len(response.Expenses), response.Expenses)
	}
	if response.Expenses[0].Priority != "MEDIUM" {
		t.Errorf("приоритет %q, ожидали MEDIUM", response.Expenses[0].Priority)
	}
}

// TestParseSMSEmptyInput проверяет пустой вход без обращения к модели.
func TestParseSMSEmptyInput(t *testing.T) {
	client := &fakeClient{err: errors.New("must not be called")}
	service := NewService(client, nil)

	response, err := service.ParseSMS(context.Background(), "   ")
	if err != nil {
		t.Fatalf("ParseSMS вернул ошибку: %v", err)
	}
	if len(response.Expenses) != 0 {
		t.Errorf("ожидали пустой результат, получили %+v", response.Expenses)
	}
}
