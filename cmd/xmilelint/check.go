package main

import (
	"fmt"
	"os"

	"github.com/sdlang/xmile-core/config"
	"github.com/sdlang/xmile-core/internal/xlog"
	"github.com/sdlang/xmile-core/pipeline"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Run the full validation pipeline over an XMILE file and report diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("config", "", "path to a TOML configuration file (spec section 6 options)")
	checkCmd.Flags().Bool("parallel", false, "resolve each model's equations across a bounded worker pool")
	checkCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	checkCmd.PersistentFlags().Bool("json-log", false, "emit logs as JSON instead of text")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLog, _ := cmd.Flags().GetBool("json-log")
	xlog.Configure(verbose, jsonLog)

	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config %s: %w", path, err)
		}
		cfg = *loaded
	}
	if parallel, _ := cmd.Flags().GetBool("parallel"); parallel {
		cfg.Parallel = true
	}

	filename := args[0]
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	res := pipeline.Run(f, filename, cfg)
	for _, d := range res.Diagnostics {
		fmt.Fprintln(cmd.OutOrStdout(), d.Report())
	}

	if len(res.Diagnostics) == 0 {
		xlog.Logger.WithField("file", filename).Info("no diagnostics")
	}

	if res.HasErrors() {
		return fmt.Errorf("%s failed validation", filename)
	}
	return nil
}
