// Package mixin provides common column groups for table declarations.
//
// These mixins are optional starting points:
//   - CreateTime: created_at timestamp
//   - UpdateTime: updated_at timestamp
//   - Time: CreateTime and UpdateTime
//   - ID: UUID primary key, filled by the UUIDKeys hook
//   - SoftDelete: nullable deleted_at timestamp
//   - TenantID: tenant_id string column
//   - TimeSoftDelete: Time and SoftDelete
//
// Usage:
//
//	var UserTable = schema.New("user").
//		Mixin(mixin.ID{}, mixin.Time{}).
//		Columns(schema.String("name")).
//		MustBuild()
//
// Project specific groups only need a Columns method:
//
//	type Audit struct{}
//
//	func (Audit) Columns() []*schema.ColumnBuilder {
//		return []*schema.ColumnBuilder{
//			schema.String("created_by"),
//			schema.String("updated_by"),
//		}
//	}
package mixin

import (
	"context"

	"github.com/google/uuid"

	"github.com/syssam/strata"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

// CreateTime adds a created_at timestamp column. Entities keep it
// current with the strata.Timestamps hook.
type CreateTime struct{}

// Columns of the create time mixin.
func (CreateTime) Columns() []*schema.ColumnBuilder {
	return []*schema.ColumnBuilder{schema.CreatedAt("created_at")}
}

// UpdateTime adds an updated_at timestamp column.
type UpdateTime struct{}

// Columns of the update time mixin.
func (UpdateTime) Columns() []*schema.ColumnBuilder {
	return []*schema.ColumnBuilder{schema.UpdatedAt("updated_at")}
}

// Time composes CreateTime and UpdateTime.
type Time struct{}

// Columns of the time mixin.
func (Time) Columns() []*schema.ColumnBuilder {
	return append(CreateTime{}.Columns(), UpdateTime{}.Columns()...)
}

// ID adds a UUID primary key. Install the UUIDKeys hook on the entity
// to generate it on insert.
type ID struct{}

// Columns of the ID mixin.
func (ID) Columns() []*schema.ColumnBuilder {
	return []*schema.ColumnBuilder{schema.UUID("id").PrimaryKey()}
}

// SoftDelete adds a nullable deleted_at column.
type SoftDelete struct{}

// Columns of the soft delete mixin.
func (SoftDelete) Columns() []*schema.ColumnBuilder {
	return []*schema.ColumnBuilder{schema.DeletedAt("deleted_at")}
}

// TenantID adds a tenant_id column for multi tenancy. Put
// privacy.TenantRule("tenant_id") in both the read and write rules of
// the entity for row level tenant isolation.
type TenantID struct{}

// Columns of the tenant id mixin.
func (TenantID) Columns() []*schema.ColumnBuilder {
	return []*schema.ColumnBuilder{schema.String("tenant_id")}
}

// TimeSoftDelete composes Time and SoftDelete.
type TimeSoftDelete struct{}

// Columns of the time soft delete mixin.
func (TimeSoftDelete) Columns() []*schema.ColumnBuilder {
	return append(Time{}.Columns(), SoftDelete{}.Columns()...)
}

var (
	_ schema.Mixin = CreateTime{}
	_ schema.Mixin = UpdateTime{}
	_ schema.Mixin = Time{}
	_ schema.Mixin = ID{}
	_ schema.Mixin = SoftDelete{}
	_ schema.Mixin = TenantID{}
	_ schema.Mixin = TimeSoftDelete{}
)

// UUIDKeys returns a PreBind hook that fills zero UUID primary key
// columns with a new random UUID on insert and upsert. Key columns must
// scan into *uuid.UUID.
func UUIDKeys() strata.Hook {
	return strata.On(strata.PreBind, func(_ context.Context, q *query.Query, in *strata.HookInput) error {
		if in.Entity == nil || (q.Op() != query.OpInsert && q.Op() != query.OpUpsert) {
			return nil
		}
		for _, c := range in.Entity.Schema().PrimaryKey() {
			if c.Type() != schema.TypeUUID {
				continue
			}
			p, err := in.Entity.Pointer(c.Name())
			if err != nil {
				return err
			}
			if id, ok := p.(*uuid.UUID); ok && *id == uuid.Nil {
				*id = uuid.New()
			}
		}
		return nil
	})
}
