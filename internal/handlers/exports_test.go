package handlers

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vishnu-krishnan/expenze/internal/models"
	"github.com/vishnu-krishnan/expenze/internal/planning"
)

// TestWriteItemsCSV проверяет формат CSV-выгрузки плана.
func TestWriteItemsCSV(t *testing.T) {
	priority := models.PriorityHigh
	detail := planning.PlanDetail{
		Plan: models.MonthPlan{ID: uuid.New(), MonthKey: "2025-03"},
		Items: []planning.ItemDetail{
			{
				PaymentItem: models.PaymentItem{
					ID:                 uuid.New(),
					Name:               "Rent",
					PlannedAmountCents: 50000,
					ActualAmountCents:  48000,
					IsPaid:             true,
					Priority:           &priority,
				},
				CategoryName: "Housing",
			},
		},
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeItemsCSV(writer, detail); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %d lines", len(lines))
	}

	if !strings.HasPrefix(lines[0], "month_key,item_id,category,name") {
		t.Errorf("unexpected header: %s", lines[0])
	}

	record := lines[1]
	for _, want := range []string{"2025-03", "Housing", "Rent", "50000", "48000", "true", "HIGH"} {
		if !strings.Contains(record, want) {
			t.Errorf("record missing %q: %s", want, record)
		}
	}
}
