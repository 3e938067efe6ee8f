package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/connecthub/connecthub/internal/interfaces/cli/migrate"
	"github.com/connecthub/connecthub/internal/interfaces/cli/server"
)

// @title ConnectHub API
// @version 1.0
// @description Integration hub for managing platform credentials, workspaces and workflows.
// @BasePath /api
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{
		Use:   "connecthub",
		Short: "ConnectHub - integration credentials and workflow hub",
		Long:  `ConnectHub stores third-party platform credentials, manages team workspaces and hosts automation workflows.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
