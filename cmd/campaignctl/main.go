// Command campaignctl renders, checks and launches campaign plans from the
// command line, against the same builder and launch code the API uses.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adbuilder/internal/logger"
)

var (
	planPath string
	verbose  bool
	log      = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:           "campaignctl",
	Short:         "Work with campaign plans outside the builder UI",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := logger.New("development")
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&planPath, "plan", "p", "campaign.yaml", "campaign plan file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	rootCmd.AddCommand(renderCmd, planCmd, launchCmd, migrateCmd, templatesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
