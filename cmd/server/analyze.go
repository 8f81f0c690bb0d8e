package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Rasch/internal/rasch"
	"github.com/soaringjerry/Rasch/internal/services"
)

type analyzeFlags struct {
	output        string
	exportDir     string
	maxIterations int
	convergence   float64
	jobs          int
}

type fileReport struct {
	File    string                    `json:"file" yaml:"file"`
	Elapsed string                    `json:"elapsed" yaml:"elapsed"`
	Summary *services.AnalysisSummary `json:"summary" yaml:"summary"`
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Estimate CSV response tables and print a report",
		Long: "analyze reads response tables (header row of item labels, one person per row, " +
			"';', ',' or tab separated), runs the Rasch estimation on each and prints abilities, " +
			"difficulties and fit statistics.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts := rasch.Options{
				MaxIterations:        cfg.Analysis.MaxIterations,
				ConvergenceCriterion: cfg.Analysis.Convergence,
			}
			if cmd.Flags().Changed("max-iterations") {
				opts.MaxIterations = f.maxIterations
			}
			if cmd.Flags().Changed("convergence") {
				opts.ConvergenceCriterion = f.convergence
			}
			jobs := f.jobs
			if jobs <= 0 {
				jobs = cfg.Analysis.Workers
			}
			reports, err := analyzeFiles(args, opts, jobs)
			if err != nil {
				return err
			}
			if f.exportDir != "" {
				if err := exportReports(reports, f.exportDir); err != nil {
					return err
				}
			}
			return writeReports(cmd.OutOrStdout(), reports, f.output)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "table", "report format: table, json or yaml")
	cmd.Flags().StringVar(&f.exportDir, "export", "", "also write <file>_full.csv into this directory")
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", rasch.DefaultMaxIterations, "JMLE iteration cap")
	cmd.Flags().Float64Var(&f.convergence, "convergence", rasch.DefaultConvergenceCriterion, "stop when the largest change falls below this")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "files analysed in parallel (default analysis.workers)")
	return cmd
}

// analyzeFiles runs every file concurrently; reports keep argument order.
func analyzeFiles(paths []string, opts rasch.Options, jobs int) ([]fileReport, error) {
	reports := make([]fileReport, len(paths))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			rep, err := analyzeFile(path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func analyzeFile(path string, opts rasch.Options) (fileReport, error) {
	fh, err := os.Open(path)
	if err != nil {
		return fileReport{}, err
	}
	defer fh.Close()

	parsed, err := services.ParseResponsesCSV(fh)
	if err != nil {
		return fileReport{}, err
	}
	m, err := rasch.NewResponseMatrix(parsed.Rows)
	if err != nil {
		return fileReport{}, err
	}
	start := time.Now()
	res, err := rasch.Run(m, opts)
	if err != nil {
		return fileReport{}, err
	}
	elapsed := time.Since(start)
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sum := services.Summarize(name, parsed.PersonLabels, parsed.ItemLabels, m.PersonScores(), m.ItemScores(), res, services.KR20(m))
	return fileReport{File: path, Elapsed: elapsed.Round(time.Microsecond).String(), Summary: sum}, nil
}

func exportReports(reports []fileReport, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	used := make(map[string]bool, len(reports))
	for i, rep := range reports {
		if rep.Summary.Empty {
			continue
		}
		out, err := services.RenderExport(rep.Summary, "full", exportBase(used, rep.Summary.DatasetName, i))
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, out.Filename), out.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// exportBase keeps export names unique when inputs from different
// directories share a base name; later ones get their argument position.
func exportBase(used map[string]bool, name string, idx int) string {
	base := name
	for n := idx + 1; used[base]; n++ {
		base = name + "_" + strconv.Itoa(n)
	}
	used[base] = true
	return base
}

func writeReports(w io.Writer, reports []fileReport, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		for i, rep := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := writeTable(w, rep); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeTable(w io.Writer, rep fileReport) error {
	sum := rep.Summary
	fmt.Fprintf(w, "== %s\n", rep.File)
	if sum.Empty {
		fmt.Fprintln(w, "no responses")
		return nil
	}
	status := "converged"
	if !sum.Converged {
		status = "iteration limit reached"
	}
	fmt.Fprintf(w, "persons %d  items %d  iterations %d (%s)  KR-20 %.3f  %s\n",
		len(sum.Persons), len(sum.Items), sum.Iterations, status, sum.KR20, rep.Elapsed)

	for _, section := range []struct {
		title string
		rows  []services.MeasureRow
	}{
		{"Items", sum.Items},
		{"Persons", sum.Persons},
	} {
		fmt.Fprintf(w, "\n%s\n", section.title)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "#\tlabel\tscore\tmeasure\tinfit\tzstd\toutfit\tzstd\tstatus\t")
		for _, r := range section.rows {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%.3f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
				r.Index, r.Label, r.RawScore, r.Measure, r.InfitMNSQ, r.InfitZ, r.OutfitMNSQ, r.OutfitZ, r.Status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
