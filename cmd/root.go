package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/captchaly/captchaly"
	"github.com/s0up4200/captchaly/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	solver  *captchaly.Solver

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	variantFlag string
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "captchaly",
	Short: "Solve CAPTCHAs through the captchaly service",
	Long: `captchaly is a CLI for the captchaly CAPTCHA-solving service. It submits
reCAPTCHA, hCaptcha, Turnstile and GeeTest challenges and prints the solved
token, and can report the account balance.`,
	SilenceUsage: true,
}

// SetVersion records build information for the version output and updates
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
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
	rootCmd.PersistentFlags().StringVar(&variantFlag, "variant", "", "API variant to use (revised or legacy)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log balances, tokens and failed responses")

	// Add subcommands
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(kindsCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Override config from command line if specified
	if cmd.Flags().Changed("variant") {
		cfg.API.Variant = variantFlag
	}
	if cmd.Flags().Changed("verbose") {
		cfg.API.Verbose = verbose
	}

	api, err := newAPI(cfg.API, logger)
	if err != nil {
		return fmt.Errorf("failed to create captchaly client: %w", err)
	}

	solver = captchaly.NewSolver(api, logger)
	logger.Debug().Str("variant", string(api.Variant())).Msg("captchaly client ready")

	return nil
}

// newAPI builds the transport for the configured variant
func newAPI(apiCfg config.APIConfig, logger zerolog.Logger) (captchaly.API, error) {
	variant, err := captchaly.ParseVariant(apiCfg.Variant)
	if err != nil {
		return nil, err
	}

	opts := []captchaly.Option{
		captchaly.WithBaseURL(apiCfg.BaseURL),
		captchaly.WithPoolSize(apiCfg.PoolSize),
		captchaly.WithVerbose(apiCfg.Verbose),
		captchaly.WithUserAgent("captchaly-cli/" + version),
	}
	if apiCfg.Timeout > 0 {
		opts = append(opts, captchaly.WithTimeout(apiCfg.Timeout))
	}
	if apiCfg.InsecureSkipVerify {
		opts = append(opts, captchaly.WithInsecureSkipVerify())
	}

	if variant == captchaly.VariantLegacy {
		client, err := captchaly.NewLegacyClient(apiCfg.Key, logger, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := captchaly.NewClient(apiCfg.Key, logger, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
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

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colour only on a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// balanceCmd represents the balance command
var balanceCmd = &cobra.Command{
	Use:     "balance",
	Short:   "Show the account balance",
	PreRunE: initializeApp,
	RunE:    runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	balance, err := solver.GetBalance(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	fmt.Printf("Balance: %s\n", balance)
	return nil
}

// kindsCmd lists the challenge types per variant
var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List supported challenge types",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%-28s %-8s %-8s\n", "KIND", "REVISED", "LEGACY")
		fmt.Println(strings.Repeat("-", 46))
		for _, kind := range captchaly.Kinds {
			fmt.Printf("%-28s %-8s %-8s\n", kind,
				boolToMark(captchaly.Supports(captchaly.VariantRevised, kind)),
				boolToMark(captchaly.Supports(captchaly.VariantLegacy, kind)))
		}
		return nil
	},
}

func boolToMark(b bool) string {
	if b {
		return "✓"
	}
	return "-"
}
