// xmilelint validates XMILE System Dynamics model files: it binds,
// resolves, and cross-checks a document and reports every diagnostic
// found, exiting non-zero if any is error-severity.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xmilelint",
	Short: "Validate XMILE System Dynamics model files",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
