package strata

import (
	"context"
	"fmt"
	"time"

	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// Stage is the point of an operation at which a hook runs.
type Stage uint8

// Hook stages.
const (
	// PreBind runs before bind values are read from the entity.
	PreBind Stage = iota + 1
	// PreExec runs after binding, right before the statement is executed.
	PreExec
	// PostExec runs after execution, with the outcome in the input.
	PostExec
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case PreBind:
		return "pre-bind"
	case PreExec:
		return "pre-exec"
	case PostExec:
		return "post-exec"
	}
	return fmt.Sprintf("Stage(%d)", s)
}

// HookInput carries the data available to a hook. Fields are filled as
// the operation progresses.
type HookInput struct {
	// Entity is the entity being written or reloaded, nil for key lookups.
	Entity Entity
	// Key holds the caller supplied key or unique value.
	Key []any
	// Args are the bound values, available from PreExec on.
	Args []any
	// Rows is the number of rows affected or returned, set for PostExec.
	Rows int64
	// Err is the execution error, set for PostExec.
	Err error
	// Executor runs the statement. Hooks reading the database use it to
	// stay inside the same transaction.
	Executor Executor
	// Sample is an entity of the statement's type: the written entity,
	// or a zero one for key lookups.
	Sample Entity
}

// Hook is invoked around the statements of an entity type.
type Hook interface {
	Stage() Stage
	Apply(ctx context.Context, q *query.Query, in *HookInput) error
}

// Hooker is implemented by entity types that install hooks.
type Hooker interface {
	Hooks() []Hook
}

// HookFunc is a Hook running fn at a stage.
type HookFunc struct {
	At Stage
	Fn func(ctx context.Context, q *query.Query, in *HookInput) error
}

// Stage implements Hook.
func (h HookFunc) Stage() Stage { return h.At }

// Apply implements Hook.
func (h HookFunc) Apply(ctx context.Context, q *query.Query, in *HookInput) error {
	return h.Fn(ctx, q, in)
}

// On returns a hook running fn at the given stage.
func On(s Stage, fn func(ctx context.Context, q *query.Query, in *HookInput) error) Hook {
	return HookFunc{At: s, Fn: fn}
}

func hooksOf(e any) []Hook {
	if h, ok := e.(Hooker); ok {
		return h.Hooks()
	}
	return nil
}

func runHooks(ctx context.Context, hooks []Hook, s Stage, q *query.Query, in *HookInput) error {
	for _, h := range hooks {
		if h.Stage() != s {
			continue
		}
		if err := h.Apply(ctx, q, in); err != nil {
			return &HookError{Stage: s, Op: q.Op().String(), Err: err}
		}
	}
	return nil
}

// Timestamps returns a PreBind hook maintaining the timestamp columns of
// an entity: created and updated columns are set on insert and upsert
// when zero, updated columns are set on every update. Columns must scan
// into *time.Time or **time.Time. A nil now uses time.Now.
func Timestamps(now func() time.Time) Hook {
	if now == nil {
		now = time.Now
	}
	return On(PreBind, func(_ context.Context, q *query.Query, in *HookInput) error {
		if in.Entity == nil {
			return nil
		}
		ts := now()
		for _, c := range in.Entity.Schema().Timestamps() {
			var force bool
			switch {
			case c.Timestamp() == schema.Updated && q.Op() == query.OpUpdate:
				force = true
			case c.Timestamp() == schema.Deleted, q.Op() != query.OpInsert && q.Op() != query.OpUpsert:
				continue
			}
			p, err := in.Entity.Pointer(c.Name())
			if err != nil {
				return err
			}
			if err := setTime(p, ts, force); err != nil {
				return fmt.Errorf("column %s: %w", c.Name(), err)
			}
		}
		return nil
	})
}

func setTime(p any, ts time.Time, force bool) error {
	switch p := p.(type) {
	case *time.Time:
		if force || p.IsZero() {
			*p = ts
		}
	case **time.Time:
		if force || *p == nil || (*p).IsZero() {
			*p = &ts
		}
	default:
		return fmt.Errorf("unexpected timestamp destination %T", p)
	}
	return nil
}
