// Package filter provides AIP-160 filter expression parsing and SQL
// translation for valuation listings.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ValuationDeclarations returns the field declarations for valuation filtering.
// Numeric fields are floats, so literals need a decimal point
// (final_price > 250000.0).
func ValuationDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("property_type", filtering.TypeString),
		filtering.DeclareIdent("location", filtering.TypeString),
		filtering.DeclareIdent("blend_method", filtering.TypeString),
		filtering.DeclareIdent("rules_version", filtering.TypeString),
		filtering.DeclareIdent("simulated", filtering.TypeBool),
		filtering.DeclareIdent("final_price", filtering.TypeFloat),
		filtering.DeclareIdent("expert_price", filtering.TypeFloat),
		filtering.DeclareIdent("area", filtering.TypeFloat),
		filtering.DeclareIdent("created_at", filtering.TypeTimestamp),
	)
}

// SQLCondition represents a SQL WHERE clause fragment with parameters.
type SQLCondition struct {
	// Clause is the SQL WHERE clause (e.g., "property_type = ?").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// Empty reports whether the condition selects every row.
func (c SQLCondition) Empty() bool {
	return c.Clause == ""
}

// fieldMapping maps filter field names to SQL column names.
var fieldMapping = map[string]string{
	"property_type": "property_type",
	"location":      "location",
	"blend_method":  "blend_method",
	"rules_version": "rules_version",
	"simulated":     "simulated",
	"final_price":   "final_price",
	"expert_price":  "expert_price",
	"area":          "area",
	"created_at":    "created_at",
}

// ParseValuationFilter parses an AIP-160 filter expression and returns a SQL
// condition. Returns an empty condition for an empty filter string.
func ParseValuationFilter(filterStr string) (SQLCondition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return SQLCondition{}, nil
	}

	decls, err := ValuationDeclarations()
	if err != nil {
		return SQLCondition{}, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return SQLCondition{}, fmt.Errorf("parse filter: %w", err)
	}

	return translateExpr(filter.CheckedExpr.GetExpr())
}

func translateExpr(e *expr.Expr) (SQLCondition, error) {
	if e == nil {
		return SQLCondition{}, nil
	}

	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	case *expr.Expr_IdentExpr:
		// A bare boolean field such as "simulated".
		column, ok := fieldMapping[kind.IdentExpr.GetName()]
		if !ok {
			return SQLCondition{}, fmt.Errorf("unknown field: %s", kind.IdentExpr.GetName())
		}
		return SQLCondition{Clause: column + " = 1"}, nil
	default:
		return SQLCondition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func translateCall(call *expr.Expr_Call) (SQLCondition, error) {
	switch call.GetFunction() {
	case filtering.FunctionAnd, filtering.FunctionFuzzyAnd:
		return translateJunction(call.GetArgs(), "AND")
	case filtering.FunctionOr:
		return translateJunction(call.GetArgs(), "OR")
	case filtering.FunctionNot:
		return translateNot(call.GetArgs())
	case filtering.FunctionEquals:
		return translateComparison(call.GetArgs(), "=")
	case filtering.FunctionNotEquals:
		return translateComparison(call.GetArgs(), "!=")
	case filtering.FunctionLessThan:
		return translateComparison(call.GetArgs(), "<")
	case filtering.FunctionLessEquals:
		return translateComparison(call.GetArgs(), "<=")
	case filtering.FunctionGreaterThan:
		return translateComparison(call.GetArgs(), ">")
	case filtering.FunctionGreaterEquals:
		return translateComparison(call.GetArgs(), ">=")
	default:
		return SQLCondition{}, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

func translateJunction(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) < 2 {
		return SQLCondition{}, fmt.Errorf("%s requires at least 2 arguments", op)
	}

	clauses := make([]string, 0, len(args))
	var params []any
	for _, arg := range args {
		cond, err := translateExpr(arg)
		if err != nil {
			return SQLCondition{}, err
		}
		clauses = append(clauses, cond.Clause)
		params = append(params, cond.Params...)
	}

	return SQLCondition{
		Clause: "(" + strings.Join(clauses, " "+op+" ") + ")",
		Params: params,
	}, nil
}

func translateNot(args []*expr.Expr) (SQLCondition, error) {
	if len(args) != 1 {
		return SQLCondition{}, fmt.Errorf("NOT requires 1 argument")
	}
	inner, err := translateExpr(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	return SQLCondition{
		Clause: fmt.Sprintf("NOT (%s)", inner.Clause),
		Params: inner.Params,
	}, nil
}

func translateComparison(args []*expr.Expr, op string) (SQLCondition, error) {
	if len(args) != 2 {
		return SQLCondition{}, fmt.Errorf("comparison requires 2 arguments")
	}

	field, err := extractFieldName(args[0])
	if err != nil {
		return SQLCondition{}, err
	}
	column, ok := fieldMapping[field]
	if !ok {
		return SQLCondition{}, fmt.Errorf("unknown field: %s", field)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return SQLCondition{}, err
	}
	if s, ok := value.(string); ok {
		switch field {
		case "location":
			value = strings.ToLower(s)
		case "created_at":
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return SQLCondition{}, fmt.Errorf("invalid timestamp format: %s", s)
			}
			value = t.UTC().UnixMilli()
		}
	}

	return SQLCondition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}

	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.GetName(), nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}

	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.GetFunction() == filtering.FunctionTimestamp && len(kind.CallExpr.GetArgs()) == 1 {
			return extractTimestampValue(kind.CallExpr.GetArgs()[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.GetFunction())
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}

	switch kind := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue returns Unix milliseconds, the storage format of
// created_at.
func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}

	constExpr, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	strVal, ok := constExpr.ConstExpr.GetConstantKind().(*expr.Constant_StringValue)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339Nano, strVal.StringValue)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
	}
	return t.UTC().UnixMilli(), nil
}
