package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"adbuilder/internal/config"
	"adbuilder/internal/db"
	"adbuilder/internal/db/migrations"
	"adbuilder/internal/repository"
	"adbuilder/internal/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database if needed and apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := db.CreateDatabaseIfNotExists(cmd.Context(), cfg.DatabaseURL, log); err != nil {
			return err
		}
		database, err := db.New(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := migrations.RunMigrations(database.DB, log); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var importTenant string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage campaign templates",
}

var templatesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Copy templates from a YAML catalogue into the database",
	Long: `Imports every template the tenant can see in FILE: its own and the
shared ones. Imported rows are owned by --tenant.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if importTenant == "" {
			return fmt.Errorf("--tenant is required")
		}
		catalogue, err := services.LoadYAMLCatalogue(args[0])
		if err != nil {
			return err
		}
		list, err := catalogue.ListTemplates(cmd.Context(), importTenant)
		if err != nil {
			return err
		}

		cfg := config.Load()
		database, err := db.New(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()
		repo := repository.NewTemplateRepository(database.DB)

		for i := range list {
			tpl := list[i]
			tpl.TenantID = importTenant
			if err := repo.CreateTemplate(cmd.Context(), &tpl); err != nil {
				return fmt.Errorf("import %q: %w", tpl.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %q as %s\n", tpl.Name, tpl.ID)
		}
		return nil
	},
}

func init() {
	templatesImportCmd.Flags().StringVar(&importTenant, "tenant", "", "advertiser id that owns the imported templates")
	templatesCmd.AddCommand(templatesImportCmd)
}
