// Package strata runs the statements generated by package query for
// entity types described by package schema.
//
// An entity type implements Entity: it names its table and exposes its
// column values and scan destinations. The operations of this package
// generate a statement for the table, bind values read from the entity
// or supplied by the caller, execute it through an Executor and decode
// the rows back into entities:
//
//	u := &User{Name: "a8m", Email: "a8m@example.com"}
//	if _, err := strata.Create(ctx, drv, u); err != nil {
//		return err
//	}
//	u, err := strata.Find[User](ctx, drv, u.ID)
//
// Capabilities are gated by types. Unique lookups take a schema.Unique
// handle, only obtainable for unique columns, and relation navigation in
// package rel requires the entity to expose a foreign key to the related
// type.
//
// Driver errors are returned as *QueryError with a classified Kind. An
// absent row is a nil entity for Find and FindBy, and a *NotFoundError
// for Read, ReadBy and Reload.
package strata
