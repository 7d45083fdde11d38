// Command rentalreport prints the dashboard's aggregate views to the terminal
// without starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"bikerental/internal/aggregation"
	"bikerental/internal/chart"
	"bikerental/internal/config"
	"bikerental/internal/dataset"
	apierrors "bikerental/internal/errors"
	"bikerental/internal/services"
	"bikerental/pkg/contracts"
	"bikerental/pkg/contracts/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "rentalreport: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	daily     string
	hourly    string
	view      string
	asJSON    bool
	chartsDir string
	format    string
	verbose   bool
	version   bool
}

// parseFlags reads args on top of the loaded configuration.
func parseFlags(args []string, defaults *config.Config, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("rentalreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.daily, "daily", defaults.Data.DailyPath, "path to the daily rental dataset")
	fs.StringVar(&opts.hourly, "hourly", defaults.Data.HourlyPath, "path to the hourly rental dataset")
	fs.StringVar(&opts.view, "view", "all", "view to print (all, season, year, hour, weekday)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the views as JSON")
	fs.StringVar(&opts.chartsDir, "charts", "", "directory to write one chart image per view")
	fs.StringVar(&opts.format, "format", defaults.Chart.DefaultFormat, "chart image format (png or svg)")
	fs.BoolVar(&opts.verbose, "v", false, "log progress to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

// selectedViews resolves the -view flag to menu slugs.
func selectedViews(name string) ([]string, error) {
	if name == "" || strings.EqualFold(name, "all") {
		var slugs []string
		for _, item := range aggregation.Menu() {
			slugs = append(slugs, item.Slug)
		}
		return slugs, nil
	}

	view, err := aggregation.ParseViewKind(name)
	if err != nil {
		return nil, err
	}
	return []string{view.Slug()}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		_, err := fmt.Fprintln(stdout, contracts.VersionString())
		return err
	}

	views, err := selectedViews(opts.view)
	if err != nil {
		return err
	}
	format, err := chart.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg.Data.DailyPath = opts.daily
	cfg.Data.HourlyPath = opts.hourly

	loader := dataset.NewLoader(cfg.Data, logger, nil)
	service := services.NewDashboardService(
		dataset.NewCache(loader, logger, nil),
		aggregation.NewSelector(logger, nil),
		chart.NewRenderer(cfg.Chart),
		services.Sources{Daily: cfg.Data.DailyPath, Hourly: cfg.Data.HourlyPath},
		nil,
		logger,
	)

	// Views share the cached tables; each result keeps its menu position.
	results := make([]*domain.ViewResponse, len(views))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range views {
		g.Go(func() error {
			view, err := service.GetView(gctx, name)
			if err != nil {
				return fmt.Errorf("view %s: %w", name, err)
			}
			results[i] = view

			if opts.chartsDir != "" {
				return writeChart(gctx, service, opts.chartsDir, name, format)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printViews(stdout, results)
}

func writeChart(ctx context.Context, service *services.DashboardService, dir, name string, format chart.Format) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apierrors.NewStorageError("failed to create chart directory", err).WithContext("dir", dir)
	}

	path := filepath.Join(dir, name+"."+string(format))
	f, err := os.Create(path)
	if err != nil {
		return apierrors.NewStorageError("failed to create chart file", err).WithContext("path", path)
	}

	if err := service.RenderChart(ctx, name, format, f); err != nil {
		f.Close()
		return fmt.Errorf("chart %s: %w", name, err)
	}
	return f.Close()
}

// printViews writes each view as an aligned table followed by its totals.
func printViews(w io.Writer, views []*domain.ViewResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	for i, view := range views {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", view.Title)

		header := append([]string{view.KeyColumn}, view.ValueColumns...)
		fmt.Fprintf(tw, "%s\t\n", strings.Join(header, "\t"))

		for _, row := range view.Rows {
			cells := []string{row.Key}
			for _, col := range view.ValueColumns {
				cells = append(cells, fmt.Sprint(row.Values[col]))
			}
			fmt.Fprintf(tw, "%s\t\n", strings.Join(cells, "\t"))
		}

		totals := []string{"total"}
		for _, col := range view.ValueColumns {
			totals = append(totals, fmt.Sprint(view.Totals[col]))
		}
		fmt.Fprintf(tw, "%s\t\n", strings.Join(totals, "\t"))
	}

	return tw.Flush()
}
