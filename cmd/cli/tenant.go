package cli

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/service"
)

func newTenantCommand() *cobra.Command {
	tenantCmd := &cobra.Command{
		Use:   "tenant",
		Short: "Inspect tenant configurations",
	}
	tenantCmd.AddCommand(newTenantValidateCommand(), newTenantListCommand(), newTenantReportCommand())
	return tenantCmd
}

// newTenantValidateCommand checks a configuration file before it is uploaded. The
// command fails when the report holds at least one error.
func newTenantValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a tenant configuration file for gaps and overlaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			var cfg models.TenantConfiguration
			if err := readJSONFile(path, &cfg); err != nil {
				return err
			}

			report := service.ValidateConfiguration(&cfg)
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Valid {
				return fmt.Errorf("configuration has %d error(s)", len(report.Errors()))
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to a tenant configuration JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTenantListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tenants of a file store, or the built-in tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			storePath, _ := cmd.Flags().GetString("store")

			configs, err := openConfigs(ctx, storePath)
			if err != nil {
				return err
			}
			tenants, err := configs.List(ctx)
			if err != nil {
				return err
			}
			for _, t := range tenants {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
			}
			return nil
		},
	}
	cmd.Flags().String("store", "", "Path to a file store (defaults to the built-in tenants)")
	return cmd
}

// newTenantReportCommand queries the SQL store directly.
func newTenantReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report the tenants held by the PostgreSQL store",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Database connection string should be passed in via a flag
			dbURL, _ := cmd.Flags().GetString("db-url")
			if dbURL == "" {
				return fmt.Errorf("db-url flag is required")
			}

			ctx := commandContext(cmd)
			dbpool, err := pgxpool.New(ctx, dbURL)
			if err != nil {
				return fmt.Errorf("unable to connect to database: %v", err)
			}
			defer dbpool.Close()

			rows, err := dbpool.Query(ctx, "SELECT tenant_id, name, updated_at FROM tenant_configurations ORDER BY tenant_id")
			if err != nil {
				return fmt.Errorf("failed to query tenant_configurations: %w", err)
			}
			defer rows.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Tenant Report:")
			for rows.Next() {
				var tenantID, name string
				var updatedAt time.Time
				if err := rows.Scan(&tenantID, &name, &updatedAt); err != nil {
					return fmt.Errorf("failed to scan row: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- Tenant: %s, Name: %s, Updated: %s\n", tenantID, name, updatedAt.UTC().Format(time.RFC3339))
			}
			return rows.Err()
		},
	}
	cmd.Flags().String("db-url", "", "Database connection URL")
	return cmd
}
