package ai

// ParsedExpense — один распознанный расход из SMS-выписки.
type ParsedExpense struct {
	Name               string `json:"name"`
	AmountCents        int64  `json:"amount_cents"`
	CategorySuggestion string `json:"category_suggestion"`
	Priority           string `json:"priority"`
	RawText            string `json:"raw_text"`
}

type ParseSMSResponse struct {
	Expenses []ParsedExpense `json:"expenses"`
}
