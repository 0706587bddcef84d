package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/syssam/strata/config"
	"github.com/syssam/strata/dialect/sql"
	"github.com/syssam/strata/internal/gen"
	"github.com/syssam/strata/query"
	"github.com/syssam/strata/schema"
)

type options struct {
	configPath string
	verbose    bool
	dialect    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "strata",
		Short:         "Schema driven SQL for Go entities",
		Long:          `strata validates table schema files, prints the statements derived from them for a dialect, and generates Go entity packages.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the strata configuration file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&opts.dialect, "dialect", "", "SQL dialect: postgres, mysql or sqlite (default from config)")

	root.AddCommand(
		newValidateCmd(opts),
		newSQLCmd(opts),
		newGenCmd(opts),
	)
	return root
}

// env is the state shared by the commands.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

func (o *options) env(cmd *cobra.Command) (*env, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.dialect != "" {
		if err := cfg.SetDialect(o.dialect); err != nil {
			return nil, err
		}
	}
	if o.verbose {
		cfg.Log.Level = logrus.DebugLevel.String()
	}
	log, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

// registry loads the schema file given as argument, or else the one of
// the configuration.
func (e *env) registry(args []string) (*schema.Registry, error) {
	path := e.cfg.SchemaPath()
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return nil, fmt.Errorf("no schema file given and none configured")
	}
	e.log.WithField("path", path).Debug("loading schema")
	return schema.LoadFile(path)
}

func newValidateCmd(opts *options) *cobra.Command {
	var ping bool
	cmd := &cobra.Command{
		Use:   "validate [schema.yaml]",
		Short: "Validate a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			reg, err := e.registry(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range reg.Tables() {
				fmt.Fprintf(out, "%s (%d columns, key %v)\n", t, len(t.Columns()), names(t.PrimaryKey()))
				for _, fk := range t.ForeignKeys() {
					fmt.Fprintf(out, "\t%s\n", fk)
				}
			}
			fmt.Fprintf(out, "%d tables ok\n", reg.Len())
			if !ping {
				return nil
			}
			return e.ping(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&ping, "ping", false, "Also check that the configured database is reachable")
	return cmd
}

func (e *env) ping(ctx context.Context) error {
	drv, err := config.Open(e.cfg, e.log)
	if err != nil {
		return err
	}
	defer drv.Close()
	rows := &sql.Rows{}
	if err := drv.Query(ctx, "SELECT 1", []any{}, rows); err != nil {
		return fmt.Errorf("ping %s: %w", drv.Dialect(), err)
	}
	e.log.WithField("dialect", drv.Dialect()).Info("database reachable")
	return rows.Close()
}

func newSQLCmd(opts *options) *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "sql [schema.yaml]",
		Short: "Print the statements derived from a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			reg, err := e.registry(args)
			if err != nil {
				return err
			}
			tables := reg.Tables()
			if table != "" {
				t, ok := reg.Lookup(table)
				if !ok {
					return fmt.Errorf("table %q not found", table)
				}
				tables = []*schema.Table{t}
			}
			g := query.Dialect(e.cfg.Database.Dialect)
			out := cmd.OutOrStdout()
			for i, t := range tables {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "-- %s\n", t)
				for _, s := range statements(g, t) {
					fmt.Fprintf(out, "%-22s %s;\n", s.name+":", s.q.SQL())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "Only print the statements of this table")
	return cmd
}

type statement struct {
	name string
	q    *query.Query
}

func statements(g query.Generator, t *schema.Table) []statement {
	ss := []statement{
		{"insert", g.Insert(t)},
		{"upsert", g.Upsert(t)},
		{"select", g.Select(t)},
		{"select all", g.SelectAll(t)},
		{"update", g.Update(t)},
		{"delete", g.Delete(t)},
	}
	for _, u := range t.Uniques() {
		c := u.Column().Name()
		ss = append(ss,
			statement{"select by " + c, g.SelectUnique(u)},
			statement{"delete by " + c, g.DeleteUnique(u)},
		)
	}
	for _, fk := range t.ForeignKeys() {
		to := fk.Target().Name()
		ss = append(ss,
			statement{"parent " + to, g.SelectParent(fk)},
			statement{"children of " + to, g.SelectChildren(fk)},
			statement{"delete children of " + to, g.DeleteByForeignKey(fk)},
		)
	}
	return ss
}

func newGenCmd(opts *options) *cobra.Command {
	var (
		out string
		pkg string
	)
	cmd := &cobra.Command{
		Use:   "gen [schema.yaml]",
		Short: "Generate a Go entity package from a schema file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env(cmd)
			if err != nil {
				return err
			}
			reg, err := e.registry(args)
			if err != nil {
				return err
			}
			if pkg == "" {
				pkg = filepath.Base(out)
			}
			g, err := gen.New(reg, pkg)
			if err != nil {
				return err
			}
			if err := g.Generate(cmd.Context(), out); err != nil {
				return err
			}
			for _, typ := range g.Types() {
				e.log.WithFields(logrus.Fields{"table": typ.Table.String(), "file": typ.File}).Debug("generated")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %d files in %s\n", len(g.Types()), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "entity", "Output directory")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Package name (default: base name of the output directory)")
	return cmd
}

func names(cols []*schema.Column) []string {
	ns := make([]string, len(cols))
	for i, c := range cols {
		ns[i] = c.Name()
	}
	return ns
}
