package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AnyUserName/imgpipe/internal/logger"
	"github.com/AnyUserName/imgpipe/internal/optimizer"
)

var (
	version = "0.1.0"
	verbose bool
	cfgFile string

	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "imgpipe",
	Short: "Adaptive asset-optimization pipeline",
	Long: `imgpipe — negotiates the best encoding for each runtime, resizes and
re-encodes raster assets, minifies vector icons, and caches every result
so identical requests are computed at most once.`,
	Version:           version,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default imgpipe.yaml in cwd)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgpipe %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// setup loads the config file and builds the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	viper.SetDefault("quality", optimizer.DefaultConfig().Quality)
	viper.SetDefault("max_width", optimizer.DefaultConfig().MaxWidth)
	viper.SetDefault("default_concurrency", optimizer.DefaultConfig().DefaultConcurrency)
	viper.SetDefault("breakpoints", optimizer.DefaultConfig().Breakpoints)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.console", true)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("imgpipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err != nil {
		if cfgFile != "" {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		// A missing default config file is fine; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var logCfg logger.Config
	if err := viper.UnmarshalKey("logging", &logCfg); err != nil {
		return fmt.Errorf("parse logging config: %w", err)
	}
	if logCfg.Level == "" {
		logCfg = logger.DefaultConfig()
	}
	if verbose {
		logCfg.Level = "debug"
		logCfg.Console = true
	}

	l, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	if !verbose && logCfg.FilePath == "" && !logCfg.Console {
		l.SetOutput(io.Discard)
	}
	log = l
	return nil
}

// pipelineConfig assembles the optimizer configuration from viper.
func pipelineConfig() optimizer.Config {
	return optimizer.Config{
		Quality:            viper.GetInt("quality"),
		MaxWidth:           viper.GetInt("max_width"),
		EnableLazyLoading:  viper.GetBool("enable_lazy_loading"),
		DefaultConcurrency: viper.GetInt("default_concurrency"),
		Breakpoints:        viper.GetIntSlice("breakpoints"),
		PlaceholderSize:    viper.GetInt("placeholder_size"),
	}
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[imgpipe] "+format+"\n", args...)
	}
}
