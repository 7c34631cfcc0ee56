package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var configDir string
var logLevel string
var logFile string
var debug bool

var rootCmd = &cobra.Command{
	Use:   "huffkit",
	Short: "Huffman coding toolkit",
	Long: `Builds Huffman code tables for text, encodes and decodes
bit strings, and serves the codec over HTTP, websockets,
UDP packets, anko scripts and IRC.

Example:
  huffkit analyze --compare "CITRONTRESCONTENT"
  huffkit encode --packed "abracadabra"
  huffkit serve`,
	SilenceUsage: true,
}

// Execute runs the command line. It is called once by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and configures logging for a command. The
// returned function must be called before exiting.
func setup() (*Config, func(), error) {
	config := &Config{}
	if err := config.Init(configDir); err != nil {
		return nil, nil, fmt.Errorf("cannot init config system: %w", err)
	}
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("error loading config file: %w", err)
	}

	level := config.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	closeLog, err := setupLogger(level, logFile)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Debug().Str("dir", config.Dir()).Msg("config loaded")
	return config, closeLog, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: user config dir/huffkit)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides log_level from config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "print debugging logs")
}

func main() {
	Execute()
}

// vim: ai:ts=8:sw=8:noet:syntax=go
