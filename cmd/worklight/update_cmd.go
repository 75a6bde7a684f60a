package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/update"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the worklight version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("worklight", update.Version)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update worklight to the latest release",
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	checker, err := update.NewChecker()
	if err != nil {
		return err
	}

	hasUpdate, latest, err := checker.Check()
	if err != nil {
		return err
	}
	if !hasUpdate {
		fmt.Printf("Already up to date (%s).\n", update.Version)
		return nil
	}

	fmt.Printf("Updating %s -> %s...\n", update.Version, latest)
	if err := checker.Install(); err != nil {
		return err
	}
	fmt.Println("Updated. Restart worklight to use the new version.")
	return nil
}
