package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"marginalloc/internal/config"
	"marginalloc/internal/engine"
	"marginalloc/internal/loader"
	"marginalloc/internal/logger"
	"marginalloc/internal/repository"
	"marginalloc/strategies/proportional"
	"marginalloc/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	positions  string
	dsn        string
	book       string
	format     string
	output     string
	currency   string
	logLevel   string
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "marginalloc <amount>",
		Short: "Allocate margin across positions by safe loan capacity",
		Long: `Spread an amount of margin over a set of positions in proportion to
their safe loan capacity. No position receives more than its capacity,
margin that does not fit is reported as leftover.

Examples:
  marginalloc 10000
  marginalloc 10000 --positions data/positions.csv --format csv
  marginalloc 10000 --dsn postgresql://localhost:5432/margin --book ibkr`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.positions, "positions", defaults.Positions, "CSV file containing position data")
	flags.StringVar(&opts.dsn, "dsn", "", "Postgres DSN, loads positions from the database instead of CSV")
	flags.StringVar(&opts.book, "book", defaults.Postgres.Book, "Book to load from Postgres")
	flags.StringVar(&opts.format, "format", defaults.Report.Format, "Output format: text, csv, json")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	flags.StringVar(&opts.currency, "currency", "", "ISO 4217 currency code for amounts")
	flags.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn, error")

	return cmd
}

func run(cmd *cobra.Command, rawAmount string, opts *options) error {
	ctx := cmd.Context()

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", rawAmount, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("invalid amount %s: %w", amount, engine.ErrNegativeAmount)
	}

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	format, err := engine.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	reportingConfig, err := engine.NewReportingConfig(format, cfg.Report.Currency, cfg.Report.Output)
	if err != nil {
		return err
	}

	source, closeSource, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	eng := engine.NewEngine(source, proportional.NewAllocator(), reportingConfig, log)
	report, err := eng.Run(ctx, amount)
	if err != nil {
		return err
	}
	return eng.Write(cmd.OutOrStdout(), report)
}

// resolveConfig layers the config file over the defaults and explicit flags
// over both.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("positions") {
		cfg.Positions = opts.positions
	}
	if flags.Changed("dsn") {
		cfg.Postgres.DSN = opts.dsn
	}
	if flags.Changed("book") {
		cfg.Postgres.Book = opts.book
	}
	if flags.Changed("format") {
		cfg.Report.Format = opts.format
	}
	if flags.Changed("output") {
		cfg.Report.Output = opts.output
	}
	if flags.Changed("currency") {
		cfg.Report.Currency = opts.currency
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type positionSource interface {
	Positions(ctx context.Context) ([]types.Position, error)
}

func openSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (positionSource, func(), error) {
	if cfg.Postgres.DSN == "" {
		log.Debug().Str("path", cfg.Positions).Msg("reading positions from csv")
		return loader.FileSource{Path: cfg.Positions}, func() {}, nil
	}

	db, err := repository.NewDatabase(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Debug().Str("book", cfg.Postgres.Book).Msg("reading positions from postgres")
	return db.Book(cfg.Postgres.Book), db.Close, nil
}
