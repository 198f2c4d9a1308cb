package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"goportfolio/adapters/excel"
	"goportfolio/domain/core"
	"goportfolio/internal/geometry"
	"goportfolio/internal/report"
	"goportfolio/internal/translator"
	"goportfolio/internal/validator"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type geometryFlags struct {
	maxDims int
	timeout time.Duration
	workers int
}

func (g *geometryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&g.maxDims, "max-dims", 20, "Enumeration ceiling on the number of variables")
	cmd.Flags().DurationVar(&g.timeout, "timeout", 30*time.Second, "Deadline on one enumeration")
	cmd.Flags().IntVar(&g.workers, "workers", 0, "Worker goroutines (default NumCPU)")
}

func (g *geometryFlags) config() geometry.Config {
	cfg := geometry.DefaultConfig()
	cfg.MaxDimensions = g.maxDims
	cfg.Timeout = g.timeout
	if g.workers > 0 {
		cfg.Workers = g.workers
	}
	return cfg
}

func newTranslateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "translate [portfolio-file]",
		Short: "Translate evaluations into linear constraints",
		Long: `Translate every evaluation in a JSON or YAML portfolio file into linear
constraints and print them.

Example: portfolio-cli translate portfolio.yaml --format table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := load(args[0])
			if err != nil {
				return err
			}
			f, err := translator.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == translator.FormatTable {
				return writeTable(cmd.OutOrStdout(), tr.ExportTable())
			}
			out, err := tr.Export(f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "dict", "dict|table|matrices")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var noCycles bool

	cmd := &cobra.Command{
		Use:   "validate [portfolio-file]",
		Short: "Check the constraint system for contradictions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := load(args[0])
			if err != nil {
				return err
			}
			rep := validator.New(validator.WithCycleDetection(!noCycles), validator.WithLogger(logger)).Validate(tr.System())
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.Flags().BoolVar(&noCycles, "no-cycles", false, "Skip cyclic contradiction detection")
	return cmd
}

func newVerticesCmd() *cobra.Command {
	var g geometryFlags

	cmd := &cobra.Command{
		Use:   "vertices [portfolio-file]",
		Short: "Enumerate the vertices of the feasible region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := load(args[0])
			if err != nil {
				return err
			}
			engine := geometry.NewEngine(tr, geometry.WithConfig(g.config()), geometry.WithLogger(logger))
			vs, err := engine.Vertices(cmd.Context())
			if err != nil {
				return err
			}
			props, err := engine.Properties(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"vertices":   vs,
				"properties": props,
			})
		},
	}

	g.register(cmd)
	return cmd
}

func newProjectCmd() *cobra.Command {
	var g geometryFlags
	var dims string

	cmd := &cobra.Command{
		Use:   "project [portfolio-file]",
		Short: "Project the feasible region onto two or three variables",
		Long: `Project the vertex set onto the given variable indices. Without --dims the
default named projections are printed.

Example: portfolio-cli project portfolio.json --dims 0,4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, _, err := load(args[0])
			if err != nil {
				return err
			}
			engine := geometry.NewEngine(tr, geometry.WithConfig(g.config()), geometry.WithLogger(logger))
			if dims == "" {
				projections, err := engine.Projections(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), projections)
			}
			idx, err := parseDims(dims)
			if err != nil {
				return err
			}
			proj, err := engine.Project(cmd.Context(), idx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), proj)
		},
	}

	cmd.Flags().StringVar(&dims, "dims", "", "Comma-separated variable indices (2 or 3)")
	g.register(cmd)
	return cmd
}

func newExportCmd() *cobra.Command {
	var g geometryFlags
	var format, out string

	cmd := &cobra.Command{
		Use:   "export [portfolio-file]",
		Short: "Export constraints, geometry or a report",
		Long: `Export the portfolio in one of:
  json          structured constraint export (re-importable)
  table         one CSV-like row per constraint
  xlsx          workbook with summary, constraints, evaluations and vertices sheets
  optimization  matrices, variable names and bounds for an external solver
  geometry      vertices, properties and default projections
  markdown|html analysis report

Example: portfolio-cli export portfolio.yaml --format xlsx --out portfolio.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, in, err := load(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return runExport(cmd.Context(), w, tr, in, format, g.config())
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "json|table|xlsx|optimization|geometry|markdown|html")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	g.register(cmd)
	return cmd
}

func runExport(ctx context.Context, w io.Writer, tr *translator.Translator, in *portfolioFile, format string, cfg geometry.Config) error {
	switch strings.ToLower(format) {
	case "json", "dict":
		return writeJSON(w, tr.ExportDocument())
	case "table":
		return writeTable(w, tr.ExportTable())
	case "optimization":
		return writeJSON(w, tr.System().OptimizationExport(core.Now().String()))
	}

	engine := geometry.NewEngine(tr, geometry.WithConfig(cfg), geometry.WithLogger(logger))
	doc, err := engine.Document(ctx)
	if err != nil {
		return err
	}
	sys := tr.System()
	rep := validator.New(validator.WithLogger(logger)).Validate(sys)

	switch strings.ToLower(format) {
	case "geometry":
		return writeJSON(w, doc)
	case "xlsx":
		return excel.NewWriter(excel.DefaultWorkbookConfig()).Write(w, excel.Workbook{
			Name:       in.Name,
			Document:   tr.ExportDocument(),
			Validation: &rep,
			Vertices:   &doc.Vertices,
		})
	case "markdown", "md", "html":
		ri := report.Input{
			Title:       in.Name,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			System:      sys,
			Records:     tr.Len(),
			Validation:  rep,
			Vertices:    doc.Vertices,
			Properties:  doc.Properties,
		}
		if strings.ToLower(format) == "html" {
			_, err := w.Write(report.HTML(ri))
			return err
		}
		_, err := io.WriteString(w, report.Markdown(ri))
		return err
	}
	return fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
}

func newScenarioCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Print the built-in 16-project reference scenario as an input file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := referenceFile()
			switch strings.ToLower(format) {
			case "yaml", "yml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(ref)
			case "json":
				return writeJSON(cmd.OutOrStdout(), ref)
			}
			return fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "yaml|json")
	return cmd
}

func load(path string) (*translator.Translator, *portfolioFile, error) {
	in, err := loadPortfolioFile(path)
	if err != nil {
		return nil, nil, err
	}
	tr, err := in.translator(epsilon)
	if err != nil {
		return nil, nil, err
	}
	return tr, in, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, tbl translator.Table) error {
	if _, err := fmt.Fprintln(w, strings.Join(tbl.Header, ",")); err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, ",")); err != nil {
			return err
		}
	}
	return nil
}

func parseDims(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	dims := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %w", p, err)
		}
		dims = append(dims, d)
	}
	return dims, nil
}
