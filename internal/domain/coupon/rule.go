package coupon

import (
	"time"

	"github.com/google/cel-go/cel"

	"saleflow/internal/core/apperror"
)

// OrderFacts are the order attributes a program rule can inspect.
type OrderFacts struct {
	// Amount is the order total in the order currency
	Amount float64

	// CurrencyISO is the order currency code
	CurrencyISO string

	// PartnerCode is the ordering partner's catalog code
	PartnerCode string

	// ProductIDs are the ordered product IDs as strings
	ProductIDs []string

	// OrderDate is the business date of the order
	OrderDate time.Time
}

// ruleEnv is the shared CEL environment for program rules. Building it
// is not free, so it is done once.
var ruleEnv = mustRuleEnv()

func mustRuleEnv() *cel.Env {
	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("currency", cel.StringType),
		cel.Variable("partner_code", cel.StringType),
		cel.Variable("product_ids", cel.ListType(cel.StringType)),
		cel.Variable("order_date", cel.TimestampType),
	)
	if err != nil {
		panic(err)
	}
	return env
}

// Rule is a compiled eligibility expression.
type Rule struct {
	source  string
	program cel.Program
}

// CompileRule compiles a CEL expression into a reusable rule. The
// expression must evaluate to a boolean.
func CompileRule(expr string) (*Rule, error) {
	ast, issues := ruleEnv.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid eligibility rule").
			WithDetail("rule", expr).
			WithCause(issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("eligibility rule must evaluate to a boolean").
			WithDetail("rule", expr).
			WithDetail("type", ast.OutputType().String())
	}

	program, err := ruleEnv.Program(ast)
	if err != nil {
		return nil, apperror.NewValidation("invalid eligibility rule").
			WithDetail("rule", expr).
			WithCause(err)
	}

	return &Rule{source: expr, program: program}, nil
}

// Eligible evaluates the rule against order facts.
func (r *Rule) Eligible(facts OrderFacts) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"amount":       facts.Amount,
		"currency":     facts.CurrencyISO,
		"partner_code": facts.PartnerCode,
		"product_ids":  facts.ProductIDs,
		"order_date":   facts.OrderDate,
	})
	if err != nil {
		return false, apperror.NewValidation("eligibility rule evaluation failed").
			WithDetail("rule", r.source).
			WithCause(err)
	}

	eligible, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewValidation("eligibility rule did not return a boolean").
			WithDetail("rule", r.source)
	}
	return eligible, nil
}
