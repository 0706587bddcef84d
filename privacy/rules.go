package privacy

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/strata"
	"github.com/syssam/strata/query"
)

// Viewer represents the authenticated user making a request.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant, or empty.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, or nil.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

func (v *SimpleViewer) GetID() string       { return v.UserID }
func (v *SimpleViewer) GetRoles() []string  { return v.Roles }
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// DenyIfNoViewer returns a rule that denies when no viewer is present
// in the context.
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("strata/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule that allows when the viewer has the role.
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule that allows when the viewer has any of the
// roles.
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range roles {
			if slices.Contains(viewer.GetRoles(), role) {
				return Allow
			}
		}
		return Skip
	})
}

// IsOwner returns a rule that allows when the column holds the viewer's
// ID in every row the statement touches: the proposed entity of a write
// and the stored rows of an update, upsert, delete or select. Writes
// giving the row to another owner are skipped.
func IsOwner(column string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		owned := func(e strata.Entity) bool {
			v, ok := r.value(e, column)
			return ok && format(v) == viewer.GetID()
		}
		if r.Write() && r.Entity != nil && !owned(r.Entity) {
			return Skip
		}
		if r.Op == query.OpInsert {
			if r.Entity == nil {
				return Skip
			}
			return Allow
		}
		rows, err := r.Stored(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			// An upsert of a new row is an insert.
			if r.Op == query.OpUpsert && r.Entity != nil {
				return Allow
			}
			return Skip
		}
		for _, row := range rows {
			if !owned(row) {
				return Skip
			}
		}
		return Allow
	})
}

// TenantRule returns a rule that allows when the column holds the
// viewer's tenant in every row the statement touches, and denies when
// any of them holds another. Rows are checked as in IsOwner.
func TenantRule(column string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetTenantID() == "" {
			return Skip
		}
		if _, ok := r.Table.Column(column); !ok {
			return Skip
		}
		var checked []strata.Entity
		if r.Write() && r.Entity != nil {
			checked = append(checked, r.Entity)
		}
		if r.Op != query.OpInsert {
			rows, err := r.Stored(ctx)
			if err != nil {
				return err
			}
			checked = append(checked, rows...)
		}
		if len(checked) == 0 {
			return Skip
		}
		for _, e := range checked {
			if v, _ := r.value(e, column); format(v) != viewer.GetTenantID() {
				return Denyf("strata/privacy: tenant mismatch")
			}
		}
		return Allow
	})
}

// format renders an ID column value, dereferencing nullable ones.
func format(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	case *int:
		if v != nil {
			return fmt.Sprint(*v)
		}
	case *int64:
		if v != nil {
			return fmt.Sprint(*v)
		}
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return ""
}
