package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/godoof/apiclient"
	"github.com/s0up4200/godoof/config"
	"github.com/s0up4200/godoof/management"
	"github.com/s0up4200/godoof/tracing"
)

var (
	cfgFile string
	envFile string
	cfg     *config.Config
	logger  zerolog.Logger

	shutdownTracing func(context.Context) error

	// Global flags
	tokenFlag string
	zoneFlag  string
	hostFlag  string
	debugFlag bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "godoof",
	Short: "A command line client for the Doofinder management API",
	Long: `godoof talks to the Doofinder management API. It manages search engines,
indices and items, downloads statistics reports and filters the search
query log with expressions.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default is ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "management API token (overrides config and DOOFINDER_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&zoneFlag, "zone", "", "API zone, e.g. eu1 or us1")
	rootCmd.PersistentFlags().StringVar(&hostFlag, "host", "", "management API host, overrides the zone")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log every HTTP request")
}

// initializeApp loads the configuration and sets up logging and tracing
func initializeApp(cmd *cobra.Command, args []string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("debug") {
		cfg.HTTP.Debug = debugFlag
		if debugFlag {
			cfg.Logging.Level = "debug"
		}
	}

	logger = setupLogger(cfg.Logging)

	tc := tracing.DefaultConfig()
	tc.ServiceVersion = version
	tc.Enabled = tc.Enabled || cfg.Tracing.Enabled
	if cfg.Tracing.Endpoint != "" {
		tc.OTLPEndpoint = cfg.Tracing.Endpoint
	}
	if cfg.Tracing.Environment != "" {
		tc.Environment = cfg.Tracing.Environment
	}
	tc.SampleRate = cfg.Tracing.SampleRate
	tc.Writer = os.Stderr

	shutdownTracing, err = tracing.Setup(cmd.Context(), tc)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if shutdownTracing == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdownTracing(ctx)
}

// loadEnvFile loads variables that are not already set in the environment
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// newClient builds a management client from flags, config and environment
func newClient() (*management.Client, error) {
	apiOpts := []apiclient.Option{
		apiclient.WithLogger(logger),
		apiclient.WithTimeout(cfg.HTTP.Timeout),
		apiclient.WithMaxRetries(cfg.HTTP.MaxRetries),
		apiclient.WithRetryDelay(cfg.HTTP.RetryDelay, cfg.HTTP.MaxRetryDelay),
		apiclient.WithDebug(cfg.HTTP.Debug),
	}
	if cfg.HTTP.RateLimit > 0 {
		apiOpts = append(apiOpts, apiclient.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.Burst))
	}
	userAgent := cfg.Doofinder.UserAgent
	if userAgent == "" {
		userAgent = apiclient.DefaultUserAgent + "/" + version
	}
	apiOpts = append(apiOpts, apiclient.WithUserAgent(userAgent))

	opts := []management.Option{management.WithAPIOptions(apiOpts...)}
	token := firstNonEmpty(tokenFlag, cfg.Doofinder.Token)
	if token == "" && os.Getenv(management.EnvPrefix+"_TOKEN") == "" {
		token = storedToken()
	}
	if token != "" {
		opts = append(opts, management.WithToken(token))
	}
	if zone := firstNonEmpty(zoneFlag, cfg.Doofinder.Zone); zone != "" {
		opts = append(opts, management.WithZone(zone))
	}
	if host := firstNonEmpty(hostFlag, cfg.Doofinder.Host); host != "" {
		opts = append(opts, management.WithHost(host))
	}

	client, err := management.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create management client: %w", err)
	}
	return client, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
