// Package filter offers AIP-160 filter search over the fields a subject
// exposes.
package filter

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/louisbranch/modelhub/internal/core/search"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// Name identifies the provider.
const Name = "filter"

// Fields are the filterable values of one object. Values must be string,
// bool, int, int64 or float64.
type Fields map[string]any

// Item is a filterable child of a subject.
type Item struct {
	Token  string
	Target string
	Fields Fields
}

// Attributed subjects expose their own fields to filters.
type Attributed interface {
	search.Subject
	FilterFields() Fields
}

// ItemSource subjects also expose filterable children.
type ItemSource interface {
	FilterItems() []Item
}

// ParseError reports a query that is not a valid filter for the subject.
type ParseError struct {
	Query string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid filter %q:\n%v", e.Query, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Provider accepts Attributed subjects.
type Provider struct{}

// New builds a Provider.
func New() *Provider { return &Provider{} }

// Name returns the provider name.
func (*Provider) Name() string { return Name }

// TryResolve accepts subjects implementing Attributed.
func (*Provider) TryResolve(subject search.Subject) (search.Capability, bool, error) {
	attributed, ok := subject.(Attributed)
	if !ok {
		return nil, false, nil
	}
	return &capability{subject: attributed}, true, nil
}

type capability struct {
	subject Attributed
}

// Match reports whether the subject or any of its items satisfies query.
func (c *capability) Match(query string) (bool, error) {
	entries, err := c.Find(query)
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// Find returns the subject entry when it satisfies query, followed by the
// matching items in order. A blank query matches nothing.
func (c *capability) Find(query string) ([]search.Entry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	fields := c.subject.FilterFields()
	var items []Item
	if source, ok := c.subject.(ItemSource); ok {
		items = source.FilterItems()
	}

	decls, err := declarations(fields, items)
	if err != nil {
		return nil, err
	}
	parsed, err := filtering.ParseFilterString(query, decls)
	if err != nil {
		return nil, &ParseError{Query: query, Err: err}
	}
	if parsed.CheckedExpr == nil || parsed.CheckedExpr.Expr == nil {
		return nil, nil
	}
	root := parsed.CheckedExpr.Expr

	var out []search.Entry
	ok, err := eval(root, fields)
	if err != nil {
		return nil, err
	}
	if ok {
		out = append(out, search.Entry{Token: search.SearchName(c.subject)})
	}
	for _, item := range items {
		ok, err := eval(root, item.Fields)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, search.Entry{Token: item.Token, Target: item.Target})
		}
	}
	return out, nil
}

// declarations declares every field seen on the subject or its items.
func declarations(fields Fields, items []Item) (*filtering.Declarations, error) {
	types := map[string]string{}
	add := func(f Fields) error {
		for name, value := range f {
			kind, err := kindOf(value)
			if err != nil {
				return fmt.Errorf("field %s: %w", name, err)
			}
			if prev, ok := types[name]; ok && prev != kind {
				return fmt.Errorf("field %s declared as both %s and %s", name, prev, kind)
			}
			types[name] = kind
		}
		return nil
	}
	if err := add(fields); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := add(item.Fields); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, name := range names {
		opts = append(opts, filtering.DeclareIdent(name, declType(types[name])))
	}
	decls, err := filtering.NewDeclarations(opts...)
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}
	return decls, nil
}

func kindOf(value any) (string, error) {
	switch value.(type) {
	case string:
		return "string", nil
	case bool:
		return "bool", nil
	case int, int64:
		return "int", nil
	case float64:
		return "float", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

func declType(kind string) *expr.Type {
	switch kind {
	case "bool":
		return filtering.TypeBool
	case "int":
		return filtering.TypeInt
	case "float":
		return filtering.TypeFloat
	default:
		return filtering.TypeString
	}
}

var errUnsupported = errors.New("unsupported filter expression")

// eval evaluates a checked filter against fields. Comparisons on a field
// the object does not carry are false.
func eval(e *expr.Expr, fields Fields) (bool, error) {
	if e == nil {
		return false, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return evalCall(kind.CallExpr, fields)
	case *expr.Expr_IdentExpr:
		value, ok := fields[kind.IdentExpr.Name].(bool)
		return ok && value, nil
	case *expr.Expr_ConstExpr:
		if b, ok := kind.ConstExpr.ConstantKind.(*expr.Constant_BoolValue); ok {
			return b.BoolValue, nil
		}
		return false, fmt.Errorf("%w: bare constant", errUnsupported)
	default:
		return false, fmt.Errorf("%w: %T", errUnsupported, kind)
	}
}

func evalCall(call *expr.Expr_Call, fields Fields) (bool, error) {
	switch call.Function {
	case "AND", "_&&_", "FUZZY":
		return evalAll(call.Args, fields)
	case "OR", "_||_":
		for _, arg := range call.Args {
			ok, err := eval(arg, fields)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case "NOT", "-", "!_":
		if len(call.Args) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		ok, err := eval(call.Args[0], fields)
		return !ok, err
	case "=", "_==_", "!=", "_!=_", "<", "_<_", "<=", "_<=_", ">", "_>_", ">=", "_>=_", ":":
		return evalComparison(call, fields)
	default:
		return false, fmt.Errorf("%w: function %s", errUnsupported, call.Function)
	}
}

func evalAll(args []*expr.Expr, fields Fields) (bool, error) {
	for _, arg := range args {
		ok, err := eval(arg, fields)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func evalComparison(call *expr.Expr_Call, fields Fields) (bool, error) {
	if len(call.Args) != 2 {
		return false, fmt.Errorf("%s requires 2 arguments", call.Function)
	}
	ident, ok := call.Args[0].ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return false, fmt.Errorf("%w: left side of %s must be a field", errUnsupported, call.Function)
	}
	want, err := constValue(call.Args[1])
	if err != nil {
		return false, err
	}
	got, present := fields[ident.IdentExpr.Name]
	if !present {
		return false, nil
	}
	order, same := compare(normalize(got), want)

	switch call.Function {
	case ":":
		gs, gok := got.(string)
		ws, wok := want.(string)
		if gok && wok {
			return strings.Contains(search.Fold(gs), search.Fold(ws)), nil
		}
		return same && order == 0, nil
	case "=", "_==_":
		return same && order == 0, nil
	case "!=", "_!=_":
		return !same || order != 0, nil
	case "<", "_<_":
		return same && order < 0, nil
	case "<=", "_<=_":
		return same && order <= 0, nil
	case ">", "_>_":
		return same && order > 0, nil
	default:
		return same && order >= 0, nil
	}
}

func constValue(e *expr.Expr) (any, error) {
	c, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("%w: right side must be a constant", errUnsupported)
	}
	switch v := c.ConstExpr.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return v.StringValue, nil
	case *expr.Constant_Int64Value:
		return v.Int64Value, nil
	case *expr.Constant_Uint64Value:
		if v.Uint64Value > math.MaxInt64 {
			return nil, fmt.Errorf("%w: constant %d out of range", errUnsupported, v.Uint64Value)
		}
		return int64(v.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return v.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return v.BoolValue, nil
	default:
		return nil, fmt.Errorf("%w: constant %T", errUnsupported, v)
	}
}

func normalize(value any) any {
	if v, ok := value.(int); ok {
		return int64(v)
	}
	return value
}

// compare orders a and b when they share a type.
func compare(a, b any) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return strings.Compare(av, bv), ok
	case int64:
		switch bv := b.(type) {
		case int64:
			return cmp.Compare(av, bv), true
		case float64:
			return cmp.Compare(float64(av), bv), true
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return cmp.Compare(av, bv), true
		case int64:
			return cmp.Compare(av, float64(bv)), true
		}
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}
