package auth

import "testing"

// TestNewOTPCode проверяет формат генерируемого кода.
func TestNewOTPCode(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := NewOTPCode()
		if err != nil {
			t.Fatalf("NewOTPCode вернул ошибку: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("длина кода %d, ожидали 6: %q", len(code), code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("код содержит не цифру: %q", code)
			}
		}
		seen[code] = true
	}

	if len(seen) < 2 {
		t.Error("все сгенерированные коды совпали")
	}
}

// TestCompareOTP проверяет сравнение кодов.
func TestCompareOTP(t *testing.T) {
	if !CompareOTP("123456", "123456") {
		t.Error("одинаковые коды должны совпадать")
	}
	if CompareOTP("123456", "654321") {
		t.Error("разные коды не должны совпадать")
	}
	if CompareOTP("123456", "12345") {
		t.Error("коды разной длины не должны совпадать")
	}
}
