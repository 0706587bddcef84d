// Package schema describes the structure of database tables: primary
// key, foreign keys, data and timestamp columns, and the schema and
// table name. Tables are declared with a TableBuilder, validated once
// by Build, and immutable afterwards.
//
//	var User = schema.New("user").
//		Columns(
//			schema.Int("id").PrimaryKey().AutoIncrement(),
//			schema.String("name"),
//			schema.String("email").Unique(),
//		).
//		MustBuild()
//
//	var Post = schema.New("post").
//		Columns(
//			schema.Int("id").PrimaryKey(),
//			schema.Int("author_id").References(User),
//			schema.String("title"),
//			schema.CreatedAt("created_at"),
//		).
//		MustBuild()
//
// Query generation in package query reads only these descriptions.
package schema
