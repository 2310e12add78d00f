package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/config"
)

// env is shared by every command and filled in before any of them runs
type env struct {
	configPath string
	logFile    string

	cfg     *config.Config
	log     *logrus.Logger
	logSink io.Closer
}

func main() {
	if err := newCommand(&env{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newCommand assembles the command tree around e
func newCommand(e *env) *cobra.Command {
	rootCmd := newRootCmd(e)
	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/lazyjson/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&e.logFile, "log-file", "", "write logs to this file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return e.setup()
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		e.close()
	}

	rootCmd.AddCommand(newFlattenCmd(e))
	rootCmd.AddCommand(newSearchCmd(e))
	rootCmd.AddCommand(newHistoryCmd(e))
	rootCmd.AddCommand(newConfigCmd(e))
	return rootCmd
}

func (e *env) setup() error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, _ := cfg.LogLevel() // validated by Load
	logger.SetLevel(level)

	path := e.logFile
	if path == "" {
		path = cfg.Log.File
	}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		logger.SetFormatter(&logrus.JSONFormatter{})
		e.logSink = f
	}
	e.log = logger
	return nil
}

func (e *env) close() {
	if e.logSink != nil {
		_ = e.logSink.Close()
		e.logSink = nil
	}
}
