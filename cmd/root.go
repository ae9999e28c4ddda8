package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bandidos",
	Short: "Bandidos backend password reset service",
	Long:  `Password reset service for the Bandidos backend: token issuance and redemption over HTTP and gRPC, a mail worker, and database tooling.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
