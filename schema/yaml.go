package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	fileDecl struct {
		Tables []tableDecl `yaml:"tables"`
	}
	tableDecl struct {
		Name        string           `yaml:"name"`
		Schema      *string          `yaml:"schema"`
		Columns     []columnDecl     `yaml:"columns"`
		ForeignKeys []foreignKeyDecl `yaml:"foreign_keys"`
	}
	columnDecl struct {
		Name          string `yaml:"name"`
		Type          string `yaml:"type"`
		Field         string `yaml:"field"`
		PrimaryKey    bool   `yaml:"primary_key"`
		AutoIncrement bool   `yaml:"auto_increment"`
		Unique        bool   `yaml:"unique"`
		Nullable      bool   `yaml:"nullable"`
		References    string `yaml:"references"`
		Timestamp     string `yaml:"timestamp"`
	}
	foreignKeyDecl struct {
		Columns    []string `yaml:"columns"`
		References string   `yaml:"references"`
	}
)

// LoadFile reads a schema file. See LoadYAML for the format.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("schema: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML reads table declarations from a YAML document and returns
// them as a registry:
//
//	tables:
//	  - name: user
//	    columns:
//	      - {name: id, type: int, primary_key: true, auto_increment: true}
//	      - {name: email, type: string, unique: true}
//	  - name: post
//	    columns:
//	      - {name: id, type: int, primary_key: true}
//	      - {name: author_id, type: int, references: user}
//	      - {name: created_at, type: time, timestamp: created}
//
// Tables may appear in any order. A reference to the table's own name
// is a self reference. A bare name declared in more than one schema must
// be qualified, as in audit.user. Composite keys are declared under
// foreign_keys.
func LoadYAML(r io.Reader) (*Registry, error) {
	var doc fileDecl
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("schema: decode yaml: %w", err)
	}
	if err := checkRefs(doc.Tables); err != nil {
		return nil, err
	}
	built := make(map[string]*Table, len(doc.Tables))
	resolve := func(name string) (*Table, bool) {
		t, ok := built[name]
		return t, ok
	}
	pending := doc.Tables
	var order []*Table
	for len(pending) > 0 {
		var next []tableDecl
		for _, ts := range pending {
			if !ts.ready(resolve) {
				next = append(next, ts)
				continue
			}
			t, err := ts.build(resolve)
			if err != nil {
				return nil, err
			}
			built[t.QualifiedName()] = t
			if _, ok := built[t.name]; !ok {
				built[t.name] = t
			}
			order = append(order, t)
		}
		if len(next) == len(pending) {
			var missing []string
			for _, ts := range next {
				missing = append(missing, ts.Name)
			}
			return nil, &SchemaError{Msg: "unresolved or cyclic references in tables " + strings.Join(missing, ", ")}
		}
		pending = next
	}
	return NewRegistry(order...)
}

// checkRefs rejects bare references to a name declared in several schemas.
func checkRefs(decls []tableDecl) error {
	schemas := make(map[string][]string)
	for _, ts := range decls {
		if !slices.Contains(schemas[ts.Name], ts.schemaName()) {
			schemas[ts.Name] = append(schemas[ts.Name], ts.schemaName())
		}
	}
	check := func(ts tableDecl, column, ref string) error {
		if strings.Contains(ref, ".") || ts.self(ref) || len(schemas[ref]) < 2 {
			return nil
		}
		return &SchemaError{
			Table:  ts.Name,
			Column: column,
			Msg:    fmt.Sprintf("ambiguous reference %q: declared in schemas %s", ref, strings.Join(schemas[ref], ", ")),
		}
	}
	for _, ts := range decls {
		for _, c := range ts.Columns {
			if c.References == "" {
				continue
			}
			if err := check(ts, c.Name, c.References); err != nil {
				return err
			}
		}
		for _, fk := range ts.ForeignKeys {
			if err := check(ts, strings.Join(fk.Columns, ", "), fk.References); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ts tableDecl) self(ref string) bool {
	return ref == ts.Name || ref == ts.schemaName()+"."+ts.Name
}

func (ts tableDecl) schemaName() string {
	if ts.Schema == nil {
		return DefaultSchema
	}
	return *ts.Schema
}

// ready reports if every table referenced by ts, other than itself, is built.
func (ts tableDecl) ready(resolve func(string) (*Table, bool)) bool {
	refs := make([]string, 0, len(ts.ForeignKeys))
	for _, c := range ts.Columns {
		if c.References != "" {
			refs = append(refs, c.References)
		}
	}
	for _, fk := range ts.ForeignKeys {
		refs = append(refs, fk.References)
	}
	for _, ref := range refs {
		if ts.self(ref) {
			continue
		}
		if _, ok := resolve(ref); !ok {
			return false
		}
	}
	return true
}

func (ts tableDecl) build(resolve func(string) (*Table, bool)) (*Table, error) {
	b := New(ts.Name).Schema(ts.schemaName())
	var errs []error
	for _, cs := range ts.Columns {
		typ, err := ParseType(cs.Type)
		if err != nil {
			errs = append(errs, errorf(ts.Name, cs.Name, "unknown column type %q", cs.Type))
			continue
		}
		var c *ColumnBuilder
		switch strings.ToLower(cs.Timestamp) {
		case "":
			c = Typed(cs.Name, typ)
		case "created":
			c = CreatedAt(cs.Name)
		case "updated":
			c = UpdatedAt(cs.Name)
		case "deleted":
			c = DeletedAt(cs.Name)
		default:
			errs = append(errs, errorf(ts.Name, cs.Name, "unknown timestamp kind %q", cs.Timestamp))
			continue
		}
		if cs.Timestamp != "" && typ != TypeTime {
			errs = append(errs, errorf(ts.Name, cs.Name, "timestamp column must be of type time"))
			continue
		}
		if cs.PrimaryKey {
			c.PrimaryKey()
		}
		if cs.AutoIncrement {
			c.AutoIncrement()
		}
		if cs.Unique {
			c.Unique()
		}
		if cs.Nullable {
			c.Nullable()
		}
		if cs.Field != "" {
			c.Field(cs.Field)
		}
		if ref := cs.References; ref != "" {
			if ts.self(ref) {
				c.ReferencesSelf()
			} else {
				t, _ := resolve(ref)
				c.References(t)
			}
		}
		b.Columns(c)
	}
	for _, fk := range ts.ForeignKeys {
		if ts.self(fk.References) {
			b.SelfReference(fk.Columns...)
			continue
		}
		t, _ := resolve(fk.References)
		b.ForeignKey(t, fk.Columns...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b.Build()
}
