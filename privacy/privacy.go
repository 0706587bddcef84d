package privacy

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/syssam/strata"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// Policy decision sentinel errors. Rules return them, possibly wrapped,
// to decide on a statement.
var (
	// Allow terminates the evaluation and lets the statement run.
	Allow = errors.New("strata/privacy: allow rule")

	// Deny terminates the evaluation and rejects the statement.
	Deny = errors.New("strata/privacy: deny rule")

	// Skip defers the decision to the next rule.
	Skip = errors.New("strata/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Request describes the statement under evaluation.
type Request struct {
	Op    query.Op
	Table *schema.Table
	// Entity is the entity being written or reloaded, nil for lookups
	// and deletes by key.
	Entity strata.Entity
	// Args are the values bound to the statement.
	Args []any
	// Load returns the stored rows the statement applies to. Policy sets
	// it to strata.Affected; a nil Load reports no rows.
	Load func(context.Context) ([]strata.Entity, error)

	stored []strata.Entity
	loaded bool
}

// Write reports if the statement modifies rows.
func (r *Request) Write() bool { return r.Op != query.OpSelect }

// Value returns the value of a column of the request entity.
func (r *Request) Value(column string) (any, bool) {
	return r.value(r.Entity, column)
}

// Stored returns the rows the statement applies to as they are before it
// runs: the rows matching its key or filter, none for an insert. They are
// loaded on first use.
func (r *Request) Stored(ctx context.Context) ([]strata.Entity, error) {
	if r.loaded || r.Load == nil {
		return r.stored, nil
	}
	rows, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	r.stored, r.loaded = rows, true
	return rows, nil
}

func (r *Request) value(e strata.Entity, column string) (any, bool) {
	if e == nil {
		return nil, false
	}
	if _, ok := r.Table.Column(column); !ok {
		return nil, false
	}
	v, err := e.Value(column)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Rule decides on a statement.
type Rule interface {
	Eval(context.Context, *Request) error
}

// RuleFunc is an adapter to use ordinary functions as rules.
type RuleFunc func(context.Context, *Request) error

// Eval returns f(ctx, r).
func (f RuleFunc) Eval(ctx context.Context, r *Request) error { return f(ctx, r) }

// Policy holds the rules of an entity type. It is a strata.Hook running
// before execution.
type Policy struct {
	Read  []Rule
	Write []Rule
}

var _ strata.Hook = Policy{}

// Stage implements strata.Hook.
func (Policy) Stage() strata.Stage { return strata.PreExec }

// Apply implements strata.Hook.
func (p Policy) Apply(ctx context.Context, q *query.Query, in *strata.HookInput) error {
	r := &Request{Op: q.Op(), Table: q.Table(), Entity: in.Entity, Args: in.Args}
	if in.Executor != nil && in.Sample != nil {
		r.Load = func(ctx context.Context) ([]strata.Entity, error) {
			return strata.Affected(ctx, in.Executor, q, in.Args, in.Sample)
		}
	}
	rules := p.Read
	if r.Write() {
		rules = p.Write
	}
	return Eval(ctx, r, rules...)
}

// Eval evaluates rules in order and returns nil if the request is
// allowed, or the denying decision.
func Eval(ctx context.Context, r *Request, rules ...Rule) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range rules {
		switch decision := rule.Eval(ctx, r); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// AlwaysAllowRule returns a rule that always allows.
func AlwaysAllowRule() Rule { return fixedDecision{Allow} }

// AlwaysDenyRule returns a rule that always denies.
func AlwaysDenyRule() Rule { return fixedDecision{Deny} }

// ContextRule creates a rule from a context evaluation function.
// Returning nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *Request) error { return eval(ctx) })
}

// OnOp evaluates rule only for the given statement kinds, and skips
// the others.
func OnOp(rule Rule, ops ...query.Op) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		if slices.Contains(ops, r.Op) {
			return rule.Eval(ctx, r)
		}
		return Skip
	})
}

// DenyOp returns a rule denying the given statement kinds.
func DenyOp(ops ...query.Op) Rule {
	return OnOp(RuleFunc(func(_ context.Context, r *Request) error {
		return Denyf("strata/privacy: %s on %s is not allowed", r.Op, r.Table)
	}), ops...)
}

// AllowOp returns a rule allowing the given statement kinds.
func AllowOp(ops ...query.Op) Rule {
	return OnOp(AlwaysAllowRule(), ops...)
}

type decisionCtxKey struct{}

// DecisionContext returns a context carrying a decision that overrides
// every policy evaluated with it.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the decision attached to the context.
// An Allow decision is reported as nil.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(context.Context, *Request) error { return f.decision }
