package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/minthantoo333/srttospeech/pkg/config"
	"github.com/minthantoo333/srttospeech/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
)

var (
	configPath string
	logLevel   string
	logFile    string
)

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func main() {
	root := &cobra.Command{
		Use:   "srttospeech",
		Short: "Telegram bot that turns subtitle text into speech",
		Long: "srttospeech accumulates text or SRT subtitle fragments sent over Telegram,\n" +
			"strips subtitle markup, and converts the result to an audio message using\n" +
			"a configurable speech synthesis backend.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetLevel(logger.ParseLevel(logLevel))
			if logFile != "" {
				if err := logger.EnableFileLogging(logFile); err != nil {
					return fmt.Errorf("enable file logging: %w", err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")

	root.AddCommand(runCmd(), initCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("srttospeech %s\n", formatVersion())
			if buildTime != "" {
				fmt.Printf("  Build: %s\n", buildTime)
			}
			fmt.Printf("  Go: %s\n", runtime.Version())
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("config already exists at %s", configPath)
			}
			if err := config.SaveConfig(configPath, config.DefaultConfig()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("✓ Config written to %s\n", configPath)
			fmt.Println("Set the Telegram bot token before running: telegram.token or SRTSPEECH_TELEGRAM_TOKEN")
			return nil
		},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return home + "/.srttospeech/config.json"
}
