package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	priorityHigh   = "HIGH"
	priorityMedium = "MEDIUM"
	priorityLow    = "LOW"
)

type Service struct {
	client Client
	logger *slog.Logger
}

// NewService создает сервис разбора банковских SMS.
func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{client: client, logger: logger}
}

// ParseSMS извлекает расходы из текста банковских SMS. Ошибки модели
// деградируют до пустого результата: распознавание вспомогательно
// и не должно ломать ручной ввод.
func (s *Service) ParseSMS(ctx context.Context, text string) (ParseSMSResponse, error) {
	if strings.TrimSpace(text) == "" {
		return ParseSMSResponse{Expenses: []ParsedExpense{}}, nil
	}

	prompt, err := buildParseSMSPrompt(text)
	if err != nil {
		return ParseSMSResponse{}, err
	}

	messages := []Message{
		{Role: "system", Content: "You are an expense extraction assistant. Respond with JSON only, without extra text."},
		{Role: "user", Content: prompt},
	}

	content, _, err := s.client.Chat(ctx, messages)
	if err != nil {
		s.logger.Warn("sms parsing degraded to empty result", slog.String("error", err.Error()))
		return ParseSMSResponse{Expenses: []ParsedExpense{}}, nil
	}

	var response ParseSMSResponse
	if err := parseJSON(content, &response); err != nil {
		s.logger.Warn("sms parsing returned malformed json", slog.String("error", err.Error()))
		return ParseSMSResponse{Expenses: []ParsedExpense{}}, nil
	}

	normalizeParsedExpenses(&response)
	return response, nil
}

func buildParseSMSPrompt(text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"sms_text": text})
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`Extract expenses from bank SMS messages as JSON.

Requirements:
- Output JSON only, no code fences, no extra text.
- Schema:
{
  "expenses": [
    {
      "name": string,
      "amount_cents": integer,
      "category_suggestion": string,
      "priority": "HIGH" | "MEDIUM" | "LOW",
      "raw_text": string
    }
  ]
}
- amount_cents is the debited amount in minor currency units, integer only.
- Skip credits, declined operations and balance notifications.
- raw_text carries the source SMS fragment the expense was extracted from.
- Keep names short (<= 60 chars).
- If nothing matches, return {"expenses": []}.

Input:
%s`, string(payload))

	return prompt, nil
}

func parseJSON(input string, target interface{}) error {
	payload := extractJSON(input)
	if payload == "" {
		return errors.New("ai response does not contain json")
	}

	return json.Unmarshal([]byte(payload), target)
}

func extractJSON(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimPrefix(strings.TrimSpace(trimmed), "json")
		trimmed = strings.TrimSpace(trimmed)
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}

	return trimmed[start : end+1]
}

func normalizeParsedExpenses(response *ParseSMSResponse) {
	filtered := make([]ParsedExpense, 0, len(response.Expenses))

	for _, expense := range response.Expenses {
		expense.Name = strings.TrimSpace(expense.Name)
		if expense.Name == "" || expense.AmountCents <= 0 {
			continue
		}
		if !isPriority(expense.Priority) {
			expense.Priority = priorityMedium
		}
		filtered = append(filtered, expense)
	}

	response.Expenses = filtered
}

func isPriority(value string) bool {
	switch strings.TrimSpace(value) {
	case priorityHigh, priorityMedium, priorityLow:
		return true
	default:
		return false
	}
}
