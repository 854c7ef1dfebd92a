package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kpistats/internal/app"
	"kpistats/internal/config"
	"kpistats/internal/datasource"
	"kpistats/internal/exporter"
	"kpistats/internal/infrastructure"
	"kpistats/internal/services"
	"kpistats/internal/validation"
	"kpistats/pkg/contracts"
)

func main() {
	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := c.rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds the process streams and flag values shared by every command
type cli struct {
	stdin  *bufio.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	sourceURL  string
	logLevel   string

	start   string
	stop    string
	kpiList string
	format  string
	outPath string
	csvFile string

	port int

	// newFetcher replaces the configured data source when set
	newFetcher func(cfg *config.Config, logger *slog.Logger) datasource.Fetcher
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:  bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kpistats",
		Short: "Summary statistics for KPI time series",
		Long: `kpistats fetches the KPI table from the configured source, keeps the rows
between --start and --stop (inclusive) and prints percent change, first and
last value, lowest, highest, mode, average and median for each KPI.

Examples:
  kpistats --start 2020-01-01 --stop 2020-12-31 --kpi_list revenue,churn
  kpistats --stop 2020-12-31 --kpi_list revenue --format table
  kpistats --stop 2020-12-31 --kpi_list revenue --format xlsx --out stats.xlsx`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context())
		},
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&c.sourceURL, "url", "", "KPI source endpoint (overrides source.url)")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	f := root.Flags()
	f.StringVar(&c.start, "start", "", "start date of time period")
	f.StringVar(&c.stop, "stop", "", "stop date of the time period")
	f.StringVar(&c.kpiList, "kpi_list", "", "comma delimited list of kpis")
	f.StringVar(&c.format, "format", string(exporter.FormatJSON), "output format: json, table, csv or xlsx")
	f.StringVarP(&c.outPath, "out", "o", "", "write results to a file instead of stdout")
	f.StringVar(&c.csvFile, "csv-file", "", "read the KPI table from a local CSV or envelope JSON file")

	root.AddCommand(c.serveCmd(), c.versionCmd())
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stats API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&c.port, "port", 0, "listen port (overrides server.port)")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.stdout, contracts.GetFullVersionString())
		},
	}
}

// loadConfig loads the config file and environment, then applies flags
func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath, func(cfg *config.Config) {
		if c.sourceURL != "" {
			cfg.Source.URL = c.sourceURL
		}
		if c.logLevel != "" {
			cfg.Logging.Level = c.logLevel
		}
		if c.port != 0 {
			cfg.Server.Port = c.port
		}
	})
}

func (c *cli) fetcher(cfg *config.Config, logger *slog.Logger) datasource.Fetcher {
	switch {
	case c.newFetcher != nil:
		return c.newFetcher(cfg, logger)
	case c.csvFile != "":
		return datasource.NewFileFetcher(c.csvFile)
	default:
		return datasource.NewHTTPFetcher(cfg.Source.URL, cfg.Source.Timeout, logger)
	}
}

func (c *cli) runStats(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, c.stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx = infrastructure.EnsureTraceID(ctx)

	format, err := exporter.ParseFormat(c.format)
	if err != nil {
		return err
	}
	if format.Binary() && c.outPath == "" {
		return fmt.Errorf("--format %s requires --out", format)
	}

	files := validation.NewFileValidator(logger)
	if c.csvFile != "" {
		if err := files.ValidateInputFile(c.csvFile); err != nil {
			return err
		}
	}
	if c.outPath != "" {
		if err := files.ValidateOutputFile(c.outPath); err != nil {
			return err
		}
	}

	if c.stop == "" {
		if c.stop, err = c.prompt("stop date of the time period"); err != nil {
			return err
		}
	}
	if c.kpiList == "" {
		if c.kpiList, err = c.prompt("comma delimited list of kpis"); err != nil {
			return err
		}
	}

	start := c.start
	if start == "" {
		start = "None"
	}
	fmt.Fprintln(c.stdout, start, c.stop, c.kpiList)

	query, err := services.ParseQuery(c.start, c.stop, c.kpiList)
	if err != nil {
		return err
	}

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, c.stderr, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	svc, err := services.NewStatsService(c.fetcher(cfg, logger), tel, logger)
	if err != nil {
		return err
	}

	results, err := svc.Run(ctx, query)
	if err != nil {
		return err
	}

	if c.outPath != "" {
		if err := exporter.ExportFile(c.outPath, results, format); err != nil {
			return err
		}
		logger.InfoContext(ctx, "results written",
			slog.String("path", c.outPath),
			slog.String("format", string(format)),
			slog.Int("kpis", len(results)))
		return nil
	}
	return exporter.Export(c.stdout, results, format)
}

func (c *cli) runServe(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, c.stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, c.stderr, logger)
	if err != nil {
		return err
	}

	// Application.Stop flushes telemetry
	application, err := app.NewApplication(cfg, logger, tel, c.fetcher(cfg, logger))
	if err != nil {
		tel.Shutdown(context.WithoutCancel(ctx))
		return err
	}
	return application.Run(ctx)
}

// prompt asks for a required value on stdin until a non-empty line arrives
func (c *cli) prompt(label string) (string, error) {
	for {
		fmt.Fprintf(c.stderr, "%s: ", label)
		line, err := c.stdin.ReadString('\n')
		if value := strings.TrimSpace(line); value != "" {
			return value, nil
		}
		if err != nil {
			return "", fmt.Errorf("no value for %s: %w", label, err)
		}
	}
}
