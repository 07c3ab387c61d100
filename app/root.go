// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "importdesk",
	Short: "ImportDesk is the vehicle-import logistics and CRM service",
	Long: `ImportDesk is the vehicle-import logistics and CRM service:
dealer and organisation management, vehicle intake tracking and a CRM with
pipeline automation rules and role-based access control.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
