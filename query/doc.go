// Package query generates parameterized SQL from table descriptions.
//
// Every operation first builds a Statement, an abstract shape listing
// the table, the column lists of each clause and the ordered columns
// whose values must be bound. Rendering turns the shape into text for
// one dialect. Identifiers are the only names written into the text;
// values are supplied separately through Query.Bind or Query.Args and
// always travel as driver arguments.
//
//	q := query.SelectUnique(user.MustUnique("email"))
//	q.SQL()                 // SELECT id, name, email FROM public.user WHERE email = $1
//	args, _ := q.Bind("a@b.com")
//
// Generation has no shared state and never fails for a table built by
// package schema.
package query
