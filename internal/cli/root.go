package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfgFile     string // Path to config file (passed via flag)
	registryURL string
	apiToken    string
	logLevel    string
	logger      *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codingreg-cli",
	Short: "CLI client for the vehicle coding registry",
	Long: `codingreg-cli is a command-line tool to interact with the coding registry,
allowing you to browse module and coding-bit definitions, decode coding
bytes, inspect PID profiles, and seed the built-in catalogs.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(logLevel)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	cobra.OnInitialize(initConfig) // Called after flags are parsed

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/codingreg/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry-url", "", "Registry server URL (overrides config/env)")
	rootCmd.PersistentFlags().StringVar(&apiToken, "api-token", "", "API token for admin operations (overrides config/env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set logging level (debug, info, warn, error)")

	viper.BindPFlag("registry_url", rootCmd.PersistentFlags().Lookup("registry-url"))
	viper.BindPFlag("api_token", rootCmd.PersistentFlags().Lookup("api-token"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		configPath := filepath.Join(home, ".config", "codingreg")
		viper.AddConfigPath(configPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CODINGREG")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. CODINGREG_REGISTRY_URL

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else {
		// Only show file not found error if a specific file was requested
		if cfgFile != "" || !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	if viper.GetString("registry_url") == "" {
		viper.SetDefault("registry_url", "http://localhost:8080")
	}
	// No default for API token - it must be explicitly provided for admin commands.
}

// initLogger initializes the Zap logger based on the desired level.
func initLogger(level string) {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
}

// GetLogger returns the initialized logger instance.
func GetLogger() *zap.Logger {
	if logger == nil {
		initLogger("info")
	}
	return logger
}
