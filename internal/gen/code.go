package gen

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/schema"
)

// multi renders a call with one argument per line.
var multi = jen.Options{Open: "(", Close: ")", Separator: ",", Multi: true}

var builders = map[schema.Type]string{
	schema.TypeBool:   "Bool",
	schema.TypeInt:    "Int",
	schema.TypeInt64:  "Int64",
	schema.TypeFloat:  "Float",
	schema.TypeString: "String",
	schema.TypeBytes:  "Bytes",
	schema.TypeTime:   "Time",
	schema.TypeUUID:   "UUID",
	schema.TypeJSON:   "JSON",
}

// table declares the table variable:
//
//	var UserTable = schema.New("user").Columns(...).MustBuild()
func (g *Generator) table(f *jen.File, typ *Type) {
	t := typ.Table
	def := jen.Qual(schemaPkg, "New").Call(jen.Lit(t.Name()))
	if t.Schema() != schema.DefaultSchema {
		def = def.Dot("Schema").Call(jen.Lit(t.Schema()))
	}
	cols := make([]jen.Code, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		cols = append(cols, g.column(c))
	}
	def = def.Dot("Columns").Custom(multi, cols...)
	for _, fk := range t.ForeignKeys() {
		if len(fk.Columns()) == 1 {
			continue
		}
		args := columnLits(fk.Columns())
		if fk.SelfReference() {
			def = def.Dot("SelfReference").Call(args...)
		} else {
			def = def.Dot("ForeignKey").Call(append([]jen.Code{jen.Id(g.types[fk.Target()].Var)}, args...)...)
		}
	}
	f.Commentf("%s describes table %s.", typ.Var, t)
	f.Var().Id(typ.Var).Op("=").Add(def.Dot("MustBuild").Call())
}

func (g *Generator) column(c *schema.Column) *jen.Statement {
	ctor := builders[c.Type()]
	switch c.Timestamp() {
	case schema.Created:
		ctor = "CreatedAt"
	case schema.Updated:
		ctor = "UpdatedAt"
	case schema.Deleted:
		ctor = "DeletedAt"
	}
	s := jen.Qual(schemaPkg, ctor).Call(jen.Lit(c.Name()))
	if c.Role() == schema.RolePrimaryKey {
		s = s.Dot("PrimaryKey").Call()
	}
	if c.AutoIncrement() {
		s = s.Dot("AutoIncrement").Call()
	}
	if c.Unique() && c.Role() != schema.RolePrimaryKey {
		s = s.Dot("Unique").Call()
	}
	if c.Nullable() && c.Timestamp() != schema.Deleted {
		s = s.Dot("Nullable").Call()
	}
	if c.Field() != schema.GoName(c.Name()) {
		s = s.Dot("Field").Call(jen.Lit(c.Field()))
	}
	if fk := c.ForeignKey(); fk != nil && len(fk.Columns()) == 1 {
		if fk.SelfReference() {
			s = s.Dot("ReferencesSelf").Call()
		} else {
			s = s.Dot("References").Call(jen.Id(g.types[fk.Target()].Var))
		}
	}
	return s
}

// entity declares the entity struct and its strata.Entity methods.
func (g *Generator) entity(f *jen.File, typ *Type) {
	t := typ.Table
	fields := make([]jen.Code, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		fields = append(fields, jen.Id(typ.Field(c)).Add(goType(c)).Tag(map[string]string{"db": c.Name()}))
	}
	f.Commentf("%s is an entity of table %s.", typ.Name, t)
	f.Type().Id(typ.Name).Struct(fields...)

	recv := strings.ToLower(typ.Name[:1])
	f.Comment("Schema implements strata.Entity.")
	f.Func().Params(jen.Op("*").Id(typ.Name)).Id("Schema").Params().Op("*").Qual(schemaPkg, "Table").Block(
		jen.Return(jen.Id(typ.Var)),
	)
	for _, m := range []struct {
		name, doc string
		addr      bool
	}{
		{name: "Value", doc: "Value returns the value of a column."},
		{name: "Pointer", doc: "Pointer returns the scan destination of a column.", addr: true},
	} {
		cases := make([]jen.Code, 0, len(t.Columns()))
		for _, c := range t.Columns() {
			v := jen.Id(recv).Dot(typ.Field(c))
			if m.addr {
				v = jen.Op("&").Add(v)
			}
			cases = append(cases, jen.Case(jen.Lit(c.Name())).Block(jen.Return(v, jen.Nil())))
		}
		f.Comment(m.doc)
		f.Func().Params(jen.Id(recv).Op("*").Id(typ.Name)).Id(m.name).Params(jen.Id("column").String()).Params(jen.Id("any"), jen.Error()).Block(
			jen.Switch(jen.Id("column")).Block(cases...),
			jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(t.Name()+": unknown column %q"), jen.Id("column"))),
		)
	}
	if len(t.Timestamps()) > 0 {
		f.Comment("Hooks maintains the timestamp columns.")
		f.Func().Params(jen.Op("*").Id(typ.Name)).Id("Hooks").Params().Index().Qual(strataPkg, "Hook").Block(
			jen.Return(jen.Index().Qual(strataPkg, "Hook").Values(
				jen.Qual(strataPkg, "Timestamps").Call(jen.Qual("time", "Now")),
			)),
		)
	}
	f.Var().Id("_").Qual(strataPkg, "Entity").Op("=").Parens(jen.Op("*").Id(typ.Name)).Call(jen.Nil())
}

// uniques declares a handle per unique column, named after the lookup
// it enables: UserByEmail.
func (g *Generator) uniques(f *jen.File, typ *Type) {
	for _, u := range typ.Table.Uniques() {
		c := u.Column()
		name := typ.Name + "By" + c.Field()
		f.Commentf("%s is the unique handle of %s.", name, c)
		f.Var().Id(name).Op("=").Id(typ.Var).Dot("MustUnique").Call(jen.Lit(c.Name()))
	}
}

// relations declares a rel.Relation per foreign key.
func (g *Generator) relations(f *jen.File, typ *Type) {
	for i, fk := range typ.Table.ForeignKeys() {
		target := g.types[fk.Target()]
		name := typ.Name + relationName(fk, target)
		f.Commentf("%s relates %s.", name, fk)
		f.Var().Id(name).Op("=").Qual(relPkg, "MustRelation").Types(jen.Id(typ.Name), jen.Id(target.Name)).Call(
			jen.Id(typ.Var).Dot("ForeignKeys").Call().Index(jen.Lit(i)),
		)
	}
}

// relationName names a foreign key after its column without the _id
// suffix, or after the target entity for composite keys.
func relationName(fk *schema.ForeignKey, target *Type) string {
	cols := fk.Columns()
	if len(cols) > 1 {
		return target.Name
	}
	name := cols[0].Name()
	if trimmed := strings.TrimSuffix(name, "_id"); trimmed != "" {
		name = trimmed
	}
	return schema.GoName(name)
}

func goType(c *schema.Column) *jen.Statement {
	var s *jen.Statement
	switch c.Type() {
	case schema.TypeBool:
		s = jen.Bool()
	case schema.TypeInt:
		s = jen.Int()
	case schema.TypeInt64:
		s = jen.Int64()
	case schema.TypeFloat:
		s = jen.Float64()
	case schema.TypeBytes:
		s = jen.Index().Byte()
	case schema.TypeTime:
		s = jen.Qual("time", "Time")
	case schema.TypeUUID:
		s = jen.Qual("github.com/google/uuid", "UUID")
	case schema.TypeJSON:
		s = jen.Qual("encoding/json", "RawMessage")
	default:
		s = jen.String()
	}
	if c.Nullable() {
		return jen.Op("*").Add(s)
	}
	return s
}

func columnLits(cols []*schema.Column) []jen.Code {
	lits := make([]jen.Code, len(cols))
	for i, c := range cols {
		lits[i] = jen.Lit(c.Name())
	}
	return lits
}
