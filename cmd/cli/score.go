package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/turtacn/suitability/internal/application/dto"
	appservice "github.com/turtacn/suitability/internal/application/service"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/service"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/file"
	"github.com/turtacn/suitability/internal/infrastructure/persistence/memory"
	"github.com/turtacn/suitability/pkg/logger"
)

func newScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the risk profile of a questionnaire answers file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			answersPath, _ := cmd.Flags().GetString("answers")
			tenantID, _ := cmd.Flags().GetString("tenant")
			storePath, _ := cmd.Flags().GetString("store")

			var answers models.ClientAnswers
			if err := readJSONFile(answersPath, &answers); err != nil {
				return err
			}

			configs, err := openConfigs(ctx, storePath)
			if err != nil {
				return err
			}

			tracer := noop.NewTracerProvider().Tracer("suitability-admin")
			risk := appservice.NewRiskProfileService(configs, service.NewNoopMetrics(), tracer, logger.NewNoopLogger())
			profile, err := risk.ComputeRiskProfile(ctx, &dto.RiskProfileRequest{ClientAnswers: &answers, TenantID: tenantID})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
	cmd.Flags().String("answers", "", "Path to a client answers JSON file")
	cmd.Flags().String("tenant", "", "Tenant id (defaults to retail)")
	cmd.Flags().String("store", "", "Path to a file store (defaults to the built-in tenants)")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

// openConfigs returns an in-memory store holding the tenants of the file at storePath plus
// any missing built-in tenant. The file itself is never written.
func openConfigs(ctx context.Context, storePath string) (*appservice.TenantConfigService, error) {
	log := logger.NewNoopLogger()
	repo := memory.NewTenantConfigRepository()

	if storePath != "" {
		fileRepo, err := file.NewTenantConfigRepository(storePath, log)
		if err != nil {
			return nil, err
		}
		stored, err := fileRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, cfg := range stored {
			if err := repo.Save(ctx, cfg); err != nil {
				return nil, err
			}
		}
	}

	configs := appservice.NewTenantConfigService(repo, log)
	if err := configs.Seed(ctx); err != nil {
		return nil, err
	}
	return configs, nil
}
