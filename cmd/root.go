package cmd

import (
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "colorize",
	Short: "Incremental color annotation engine for text buffers",
	Long: `colorize computes color-swatch annotations for source files and keeps them
fresh under rapid edits, saves and focus changes.

It coalesces triggers through debouncing and rate limiting, serializes all
annotation updates, and caches computed annotations per document so that
revisiting an unchanged file costs nothing.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./colorize.yaml, searched upward)")
	logger.BindFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Infof("Using config file: %s", viper.ConfigFileUsed())
		}
	}
	viper.SetEnvPrefix("COLORIZE")
	viper.AutomaticEnv()
}
