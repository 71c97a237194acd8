// Package main is the parsehire entry point: parse, enhance and score career
// documents from the command line or serve the pipelines over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jmwangi/parsehire/internal/config"
	"github.com/jmwangi/parsehire/internal/llm"
	"github.com/jmwangi/parsehire/internal/logger"
)

var (
	cfgFile  string
	debug    bool
	jsonLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "parsehire",
	Short: "Extract and score resumes against job descriptions",
	Long: "parsehire turns resume and job-description documents (PDF, DOCX) into " +
		"structured records and ranks candidates against a job description, " +
		"using the Gemini API for extraction and scoring.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "write logs as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger and the extraction client
// shared by every subcommand.
func setup(ctx context.Context) (*config.Config, *zap.Logger, *llm.Gemini, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("parsehire")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.New(jsonLogs, debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}

	client, err := llm.NewGemini(ctx, llm.Config{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	}, log)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, log, client, nil
}
