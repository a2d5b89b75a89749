package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fs-kitamura/factorplot/internal/chart"
	"github.com/fs-kitamura/factorplot/internal/dataset"
	"github.com/fs-kitamura/factorplot/internal/db"
	"github.com/fs-kitamura/factorplot/internal/stats"
	"github.com/fs-kitamura/factorplot/internal/web"
)

var dbPath string

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "factorplot.db"
	}
	return filepath.Join(home, ".local/share/factorplot", "factorplot.db")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "factorplot",
		Short: "Two-factor summary statistics and line charts with error bars",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "database path")

	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(plotCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(datasetsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// inputFlags selects where a command's observations come from: a
// bundled dataset by default, or a CSV file with named columns.
type inputFlags struct {
	builtin string
	csvPath string
	xCol    string
	series  string
	value   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.builtin, "dataset", "motortrend", "builtin dataset name")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "CSV file to load instead of a builtin dataset")
	cmd.Flags().StringVar(&f.xCol, "x", "", "CSV column for the x-axis factor (required with --csv)")
	cmd.Flags().StringVar(&f.series, "series", "", "CSV column for the series factor (required with --csv)")
	cmd.Flags().StringVar(&f.value, "value", "", "CSV column for the measurement (required with --csv)")
}

func (f *inputFlags) load() (*dataset.Dataset, error) {
	if f.csvPath == "" {
		return dataset.Builtin(f.builtin)
	}

	file, err := os.Open(f.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.csvPath, err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(f.csvPath), filepath.Ext(f.csvPath))
	ds, err := dataset.ReadCSV(file, name, dataset.Columns{
		X:      f.xCol,
		Series: f.series,
		Value:  f.value,
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.csvPath, err)
	}
	return ds, nil
}

func summarizeCmd() *cobra.Command {
	var input inputFlags

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print the grouped summary table for a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := input.load()
			if err != nil {
				return err
			}

			groups, err := ds.Summarize()
			if err != nil {
				return err
			}

			printSummary(ds, groups)
			return nil
		},
	}

	input.register(cmd)
	return cmd
}

func plotCmd() *cobra.Command {
	var input inputFlags
	var outputFile string
	var title string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render a dataset as an SVG line chart with error bars",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := input.load()
			if err != nil {
				return err
			}

			groups, err := ds.Summarize()
			if err != nil {
				return err
			}

			if title == "" {
				title = fmt.Sprintf("Mean %s by %s and %s", ds.ValueLabel, ds.XLabel, ds.SeriesLabel)
			}
			cfg := chart.DefaultConfig(title, ds.XLabel, ds.SeriesLabel, ds.ValueLabel)

			svg, err := chart.Render(cfg, groups)
			if err != nil {
				return err
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, svg, 0o644); err != nil {
					return fmt.Errorf("write file: %w", err)
				}
				color.Green("Wrote %s (%d bytes)", outputFile, len(svg))
				return nil
			}

			_, _ = os.Stdout.Write(svg)
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&title, "title", "", "chart title")

	return cmd
}

func importCmd() *cobra.Command {
	var input inputFlags
	var name string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a dataset so it can be listed, plotted, and served",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := input.load()
			if err != nil {
				return err
			}
			if name != "" {
				ds.Name = name
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			source := input.csvPath
			if source == "" {
				source = "builtin:" + input.builtin
			}

			if _, err := database.SaveDataset(ds, source); err != nil {
				return err
			}

			color.Green("Imported %q (%d observations)", ds.Name, len(ds.Observations))
			return nil
		},
	}

	input.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "name to store the dataset under (default: derived from input)")

	return cmd
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			metas, err := database.ListDatasets(limit)
			if err != nil {
				return err
			}

			if len(metas) == 0 {
				fmt.Println("No datasets found")
				return nil
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("%-20s %-14s %-14s %-10s %6s  %s\n",
				"Name", "X", "Series", "Value", "Rows", "Imported")
			_, _ = dim.Println(strings.Repeat("-", 84))

			for _, m := range metas {
				count, err := database.CountObservations(m.ID)
				if err != nil {
					return err
				}
				date := m.CreatedAt
				if len(date) > 10 {
					date = date[:10]
				}
				fmt.Printf("%-20s %-14s %-14s %-10s %6d  %s\n",
					m.Name, m.XLabel, m.SeriesLabel, m.ValueLabel, count, date)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max datasets to show")

	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a stored dataset's summary table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			ds, err := database.GetDataset(args[0])
			if err != nil {
				return fmt.Errorf("dataset not found: %w", err)
			}

			groups, err := ds.Summarize()
			if err != nil {
				return err
			}

			cyan := color.New(color.FgCyan)
			_, _ = cyan.Printf("Dataset %s (%d observations)\n\n", ds.Name, len(ds.Observations))
			printSummary(ds, groups)
			return nil
		},
	}

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			if err := database.DeleteDataset(args[0]); err != nil {
				return err
			}

			color.Green("Deleted dataset %q", args[0])
			return nil
		},
	}

	return cmd
}

func serveCmd() *cobra.Command {
	var port int
	var open bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI server",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer closeDB(database)

			addr := fmt.Sprintf(":%d", port)
			server := web.NewServer(database, addr)
			return server.Start(open)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&open, "open", false, "open browser automatically")

	return cmd
}

func datasetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List bundled datasets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range dataset.BuiltinNames() {
				fmt.Println(name)
			}
			return nil
		},
	}

	return cmd
}

func closeDB(database *db.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
	}
}

func printSummary(ds *dataset.Dataset, groups []stats.Group) {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	yellow := color.New(color.FgYellow)

	_, _ = cyan.Printf("%-12s %-12s %6s %10s %10s %12s\n",
		ds.XLabel, ds.SeriesLabel, "N", "Mean", "SE", "95% CI")
	_, _ = dim.Println(strings.Repeat("-", 66))

	for _, g := range groups {
		fmt.Printf("%-12s %-12s %6d %10.3f %10.3f %11s ",
			g.X, g.Series, g.N, g.Mean, g.StdErr,
			fmt.Sprintf("±%.3f", g.HalfWidth))
		if g.Degenerate {
			_, _ = yellow.Println("(n=1)")
		} else {
			fmt.Println()
		}
	}
}
