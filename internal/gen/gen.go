// Package gen generates entity types for the tables of a schema
// registry. Every table gets a file holding its table variable, its
// entity struct implementing strata.Entity without reflection, unique
// handles for its unique columns and relations for its foreign keys.
package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/syssam/strata/schema"
)

const (
	strataPkg = "github.com/syssam/strata"
	schemaPkg = "github.com/syssam/strata/schema"
	relPkg    = "github.com/syssam/strata/rel"
)

// Generator generates the entity package of a registry.
type Generator struct {
	reg     *schema.Registry
	pkg     string
	workers int
	types   map[*schema.Table]*Type
}

// Type holds the generated names of a table.
type Type struct {
	Table *schema.Table
	// Name is the entity struct name.
	Name string
	// Var is the name of the table variable.
	Var string
	// File is the generated file name.
	File string
	// fields maps column names to struct field names.
	fields map[string]string
}

// methods are declared on every entity, so no field may take their names.
var methods = map[string]bool{"Schema": true, "Value": true, "Pointer": true, "Hooks": true}

// Field returns the struct field name of column c. A column whose Go
// name is taken by an entity method gets a Field suffix.
func (t *Type) Field(c *schema.Column) string {
	return t.fields[c.Name()]
}

// New returns a generator for the tables of reg, writing Go package
// pkg. It fails if two tables map to the same Go name or file name.
func New(reg *schema.Registry, pkg string) (*Generator, error) {
	if !token(pkg) {
		return nil, fmt.Errorf("gen: invalid package name %q", pkg)
	}
	g := &Generator{
		reg:     reg,
		pkg:     pkg,
		workers: runtime.GOMAXPROCS(0),
		types:   make(map[*schema.Table]*Type, reg.Len()),
	}
	fold := cases.Fold()
	seen := make(map[string]*schema.Table)
	for _, t := range reg.Tables() {
		typ, err := newType(t)
		if err != nil {
			return nil, err
		}
		// File names must differ on case insensitive file systems too.
		for _, key := range []string{typ.Name, fold.String(typ.File)} {
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("gen: tables %s and %s both generate %s", prev, t, key)
			}
			seen[key] = t
		}
		g.types[t] = typ
	}
	return g, nil
}

func newType(t *schema.Table) (*Type, error) {
	name := schema.GoName(inflect.Singularize(t.Name()))
	if t.Schema() != "" && t.Schema() != schema.DefaultSchema {
		name = schema.GoName(t.Schema()) + name
	}
	typ := &Type{
		Table:  t,
		Name:   name,
		Var:    name + "Table",
		File:   inflect.Underscore(name) + ".go",
		fields: make(map[string]string, len(t.Columns())),
	}
	owner := make(map[string]*schema.Column)
	for _, c := range t.Columns() {
		field := c.Field()
		if methods[field] {
			field += "Field"
		}
		if prev, ok := owner[field]; ok {
			return nil, fmt.Errorf("gen: columns %s and %s both generate field %s.%s", prev, c, name, field)
		}
		owner[field] = c
		typ.fields[c.Name()] = field
	}
	return typ, nil
}

// WithWorkers sets the number of files written in parallel.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Types returns the generated names of all tables, ordered by entity
// name.
func (g *Generator) Types() []*Type {
	ts := make([]*Type, 0, len(g.types))
	for _, t := range g.types {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i].Name < ts[j].Name })
	return ts
}

// Type returns the generated names of t.
func (g *Generator) Type(t *schema.Table) (*Type, bool) {
	typ, ok := g.types[t]
	return typ, ok
}

// Generate writes one file per table into dir.
func (g *Generator) Generate(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("gen: create output directory: %w", err)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for _, typ := range g.Types() {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.write(g.File(typ), filepath.Join(dir, typ.File))
		})
	}
	return eg.Wait()
}

func (g *Generator) write(f *jen.File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Render(out); err != nil {
		out.Close()
		return fmt.Errorf("gen: render %s: %w", filepath.Base(path), err)
	}
	return out.Close()
}

// File returns the generated file of typ.
func (g *Generator) File(typ *Type) *jen.File {
	f := jen.NewFile(g.pkg)
	f.HeaderComment("Code generated by strata. DO NOT EDIT.")
	g.table(f, typ)
	g.entity(f, typ)
	g.uniques(f, typ)
	g.relations(f, typ)
	return f
}

// token reports if s is a valid lower case package name.
func token(s string) bool {
	if s == "" || s != strings.ToLower(s) {
		return false
	}
	for i, r := range s {
		if !(r == '_' || r >= 'a' && r <= 'z' || i > 0 && r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
