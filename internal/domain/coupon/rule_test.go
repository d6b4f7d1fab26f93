package coupon

import (
	"testing"
	"time"
)

func testFacts() OrderFacts {
	return OrderFacts{
		Amount:      250,
		CurrencyISO: "EUR",
		PartnerCode: "PT-ACME",
		ProductIDs:  []string{"p1", "p2"},
		OrderDate:   time.Date(2021, 8, 14, 7, 0, 0, 0, time.UTC),
	}
}

func TestRuleEvaluation(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"amount threshold met", `amount >= 100.0`, true},
		{"amount threshold missed", `amount > 1000.0`, false},
		{"currency match", `currency == "EUR"`, true},
		{"partner prefix", `partner_code.startsWith("PT-")`, true},
		{"product membership", `"p2" in product_ids`, true},
		{"product absent", `"p9" in product_ids`, false},
		{"date window", `order_date < timestamp("2022-01-01T00:00:00Z")`, true},
		{"conjunction", `amount >= 100.0 && currency == "EUR"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := CompileRule(tt.expr)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}

			got, err := rule.Eligible(testFacts())
			if err != nil {
				t.Fatalf("eval: %v", err)
			}
			if got != tt.want {
				t.Errorf("eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileRuleRejectsBadExpressions(t *testing.T) {
	if _, err := CompileRule(`amount >=`); err == nil {
		t.Error("syntax error must be rejected")
	}
	if _, err := CompileRule(`amount + 1.0`); err == nil {
		t.Error("non-boolean rule must be rejected")
	}
	if _, err := CompileRule(`unknown_var == 1`); err == nil {
		t.Error("unknown variable must be rejected")
	}
}
