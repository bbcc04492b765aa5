// Package cli implements the symrxn command line: template generation,
// template runs over molecule files and symmetry ranking.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/chem"
	"github.com/turtacn/SymRxn/internal/infrastructure/database/redis"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/SymRxn/internal/infrastructure/monitoring/prometheus"
	apihttp "github.com/turtacn/SymRxn/internal/interfaces/http"
	"github.com/turtacn/SymRxn/internal/interfaces/http/handlers"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
	WatchConfig  bool
	StatusAddr   string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config    *config.Config
	Logger    logging.Logger
	Oracle    *chem.Oracle
	KeyCache  reaction.KeyCache
	Collector prom.MetricsCollector
	Metrics   *prom.EngineMetrics
	// Progress is set while the status server runs.
	Progress     *handlers.ProgressHandler
	OutputFormat string
	Verbose      bool

	redis   *redis.Client
	closers []func() error
}

// Close releases the resources opened by persistentPreRun.
func (c *CLIContext) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "symrxn",
		Short: "SymRxn: symmetry-aware reaction enumeration",
		Long: "SymRxn builds bridge reaction templates between symmetric atoms of a molecule,\n" +
			"deduplicates them by their effect on a probe molecule and enumerates the\n" +
			"symmetry-distinct products of a template on target molecules.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./symrxn.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config file")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "global operation timeout (0 disables)")
	pf.BoolVar(&opts.WatchConfig, "watch-config", false, "reload the log level when the config file changes")
	pf.StringVar(&opts.StatusAddr, "status-addr", "", "serve /healthz, /readyz, /progress and /metrics on this address")

	cmd.AddCommand(
		NewGenerateCmd(),
		NewRunCmd(),
		NewRankCmd(),
	)
	for _, sub := range cmd.Commands() {
		closeOnError(sub)
	}
	return cmd
}

// closeOnError releases the CLIContext when RunE fails, since cobra skips
// PersistentPostRunE in that case.
func closeOnError(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		if err != nil {
			if cliCtx, ctxErr := GetCLIContext(c); ctxErr == nil {
				_ = cliCtx.Close()
			}
		}
		return err
	}
}

// persistentPreRun initializes config, logger, oracle, metrics and the key
// cache, then stores a CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam(fmt.Sprintf("unknown output format %q", opts.OutputFormat))
	}

	cfg, path, err := initConfig(opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "config initialization failed")
	}

	logger, err := initLogger(cfg, opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "logger initialization failed")
	}
	logging.SetDefault(logger)

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Oracle:       chem.NewOracle(chem.WithLogger(logger), chem.WithMaxProducts(cfg.Executor.MaxProducts)),
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
	}
	cliCtx.closers = append(cliCtx.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		cliCtx.closers = append(cliCtx.closers, func() error {
			cancel()
			return nil
		})
	}

	if err := initMetrics(cliCtx, opts.StatusAddr != ""); err != nil {
		return err
	}
	initKeyCache(ctx, cliCtx)
	if opts.StatusAddr != "" {
		if err := startStatusServer(cliCtx, opts.StatusAddr); err != nil {
			_ = cliCtx.Close()
			return err
		}
	}

	if opts.WatchConfig && path != "" {
		config.Watch(path, func(c *config.Config) {
			if logging.SetLevel(logger, c.Log.Level) {
				logger.Info("log level reloaded", logging.String("level", c.Log.Level))
			}
		}, func(err error) {
			logger.Warn("config reload rejected", logging.Err(err))
		})
	}

	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// persistentPostRun pushes metrics when a push gateway is configured and
// releases resources.
func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	if gw := cliCtx.Config.Metrics.PushGateway; gw != "" && cliCtx.Config.Metrics.Enabled {
		if err := cliCtx.Collector.Push(gw, cliCtx.Config.Metrics.JobName); err != nil {
			cliCtx.Logger.Warn("metrics push failed", logging.String("gateway", gw), logging.Err(err))
		}
	}
	return cliCtx.Close()
}

// initConfig loads configuration with priority: flags > env > file > defaults.
// It returns the file it read, if any.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./symrxn.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".symrxn", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/symrxn/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if opts.LogLevel != "" {
		if _, ok := logging.ParseLevel(opts.LogLevel); !ok {
			return nil, errors.InvalidParam(fmt.Sprintf("unknown log level %q", opts.LogLevel))
		}
		logCfg.Level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	return logging.NewLogger(logCfg)
}

// initMetrics registers the engine metrics. The status server needs a real
// registry even when metrics are disabled in the config.
func initMetrics(c *CLIContext, force bool) error {
	if !c.Config.Metrics.Enabled && !force {
		c.Collector = prom.NewNoopCollector()
		c.Metrics = prom.NewNoopEngineMetrics()
		return nil
	}
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{
		Namespace: c.Config.Metrics.Namespace,
		Subsystem: c.Config.Metrics.Subsystem,
	}, c.Logger)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "metrics initialization failed")
	}
	c.Collector = collector
	c.Metrics = prom.NewEngineMetrics(collector)
	return nil
}

// initKeyCache selects the reaction key cache. An unreachable Redis falls
// back to the in-memory cache.
func initKeyCache(ctx context.Context, c *CLIContext) {
	cc := c.Config.Cache
	switch cc.Backend {
	case config.CacheBackendNone:
		c.KeyCache = reaction.NopKeyCache{}
	case config.CacheBackendRedis:
		client, err := redis.NewClient(ctx, cc.Redis, c.Logger)
		if err != nil {
			c.Logger.Warn("redis key cache unavailable, using memory", logging.Err(err))
			c.KeyCache = reaction.NewMemoryKeyCache()
			return
		}
		c.redis = client
		c.closers = append(c.closers, client.Close)
		c.KeyCache = redis.NewKeyCache(client, c.Logger, redis.WithPrefix(cc.Prefix), redis.WithTTL(cc.TTL))
	default:
		c.KeyCache = reaction.NewMemoryKeyCache()
	}
}

// startStatusServer serves health, progress and metrics while the command runs.
func startStatusServer(c *CLIContext, addr string) error {
	var checkers []handlers.HealthChecker
	if c.redis != nil {
		checkers = append(checkers, c.redis)
	}
	c.Progress = handlers.NewProgressHandler()
	srv := apihttp.NewServer(addr, apihttp.NewRouter(apihttp.RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(Version, checkers...),
		ProgressHandler:  c.Progress,
		MetricsCollector: c.Collector,
		Logger:           c.Logger,
	}), c.Logger)
	if err := srv.Start(); err != nil {
		return err
	}
	c.closers = append(c.closers, func() error { return srv.Stop(context.Background()) })
	return nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application. An interrupt
// cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}
	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

// printJSON outputs data as indented JSON to stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printText outputs data as a simple string representation to stdout.
func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// printTable outputs data as a table if it implements tableProvider,
// otherwise falls back to text.
func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as an aligned ASCII table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if len(row[i]) > colWidths[i] {
				colWidths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells func(i int) string) {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(padRight(cells(i), colWidths[i]))
		}
		sb.WriteString("\n")
	}
	writeRow(func(i int) string { return headers[i] })
	writeRow(func(i int) string { return strings.Repeat("-", colWidths[i]) })
	for _, row := range rows {
		writeRow(func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		})
	}
	return sb.String()
}

// padRight pads s with spaces to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

//Personal.AI order the ending
