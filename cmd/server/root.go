package main

import (
	"fmt"
	"os"

	"chatimmo/internal/config"
	"chatimmo/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chatimmo",
	Short: "Clé d'Or property chat assistant",
	Long: `chatimmo answers property searches written in plain language
("2 bedrooms in Lac2, price under 1500") from the Clé d'Or catalog, over a
web chat page, a JSON API or the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// ask prints its answer on stdout, so its logs go to stderr
		if cmd.Name() == askCmd.Name() {
			logger = logging.NewWithWriter(cfg.Logging, os.Stderr)
		} else {
			logger = logging.New(cfg.Logging)
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML)")
	rootCmd.AddCommand(serveCmd, askCmd)
}
