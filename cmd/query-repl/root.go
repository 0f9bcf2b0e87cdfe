// cmd/query-repl/root.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"query-intent-workers/internal/common/config"
	"query-intent-workers/internal/common/database"
	"query-intent-workers/internal/common/logger"
	"query-intent-workers/internal/intent"
	"query-intent-workers/internal/repl"
	"query-intent-workers/internal/session"
	"query-intent-workers/internal/vocabulary"
)

var (
	configPath string
	today      string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "query-repl",
	Short: "Turn free-text metric questions into structured query records",
	Long: `query-repl reads one question per line, for example
"What was the GMV of Flipkart last year?", and prints the structured
records as JSON. Questions containing "compare" also include the records
of the previous successful question. Type 'exit' to quit.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a config file (default: configs/config.yaml if present)")
	rootCmd.Flags().StringVar(&today, "today", "", "fix the reference date (YYYY-MM-DD) instead of using the clock")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	// stdout carries the JSON output only.
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, "stderr")
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	clock, err := newClock(cfg.Query.Location())
	if err != nil {
		return err
	}

	db, closeDB, err := openVocabularyDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	vocab, err := vocabulary.Load(ctx, cfg.Vocabulary, db, log)
	if err != nil {
		return err
	}

	builder := intent.NewBuilder(
		intent.WithMatcher(intent.NewMatcher(cfg.Query.FuzzyThreshold)),
		intent.WithResolver(intent.Resolver{NormalizeAbsolute: cfg.Query.NormalizeAbsoluteDates}),
		intent.WithClock(clock),
		intent.WithLogger(log.WithFields(map[string]interface{}{"component": "builder"})),
	)

	s := session.New(builder, vocab, cfg.Query.HistorySize, log)
	return repl.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newClock(loc *time.Location) (func() time.Time, error) {
	if today == "" {
		return func() time.Time { return time.Now().In(loc) }, nil
	}
	fixed, err := time.ParseInLocation(intent.ISODate, today, loc)
	if err != nil {
		return nil, fmt.Errorf("--today: %q is not a YYYY-MM-DD date", today)
	}
	return func() time.Time { return fixed }, nil
}

func openVocabularyDB(ctx context.Context, cfg *config.Config) (*sql.DB, func(), error) {
	if cfg.Vocabulary.Source != config.VocabularySourcePostgres {
		return nil, func() {}, nil
	}
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg.DB, func() { pg.Close() }, nil
}
