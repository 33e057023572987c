// Package main implements the todocal CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/todocal/internal/model"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "todocal",
	Short:        "Personal todos with due dates, tags and a calendar",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, registerCmd, agendaCmd, statsCmd)
}

func loadConfig() (*model.AppConfig, error) {
	return model.LoadConfig(configPath)
}
