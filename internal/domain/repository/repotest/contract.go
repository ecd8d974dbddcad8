// Package repotest holds the behaviour every TenantConfigRepository backend must share.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/suitability/internal/domain/models"
	"github.com/turtacn/suitability/internal/domain/repository"
	"github.com/turtacn/suitability/pkg/errors"
)

// RunContractTests exercises repo against the repository contract. newRepo must return
// an empty repository each time it is called.
func RunContractTests(t *testing.T, newRepo func(t *testing.T) repository.TenantConfigRepository) {
	ctx := context.Background()

	t.Run("get missing returns not found", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, "missing")
		assert.True(t, errors.IsNotFoundError(err), "got %v", err)
	})

	t.Run("save then get round trips", func(t *testing.T) {
		repo := newRepo(t)
		want := models.PrivateBankingConfiguration()
		require.NoError(t, repo.Save(ctx, want))

		got, err := repo.Get(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("save replaces wholesale", func(t *testing.T) {
		repo := newRepo(t)
		cfg := models.RetailConfiguration()
		require.NoError(t, repo.Save(ctx, cfg))

		replacement := &models.TenantConfiguration{
			ID:           cfg.ID,
			Name:         "Renamed",
			ScoringRules: &models.ScoringRules{},
			RiskLevels:   []models.RiskTier{},
		}
		require.NoError(t, repo.Save(ctx, replacement))

		got, err := repo.Get(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.NotNil(t, got.ScoringRules)
		assert.Nil(t, got.ScoringRules.KnowledgeExperience)
		assert.NotNil(t, got.RiskLevels)
		assert.Empty(t, got.RiskLevels)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		repo := newRepo(t)
		cfg := models.RetailConfiguration()
		require.NoError(t, repo.Save(ctx, cfg))

		cfg.Name = "mutated after save"
		got, err := repo.Get(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, "Retail Banking", got.Name)

		got.RiskLevels[0].AllowedInstruments[0] = "crypto"
		again, err := repo.Get(ctx, cfg.ID)
		require.NoError(t, err)
		assert.Equal(t, "government_bonds", again.RiskLevels[0].AllowedInstruments[0])
	})

	t.Run("list returns every tenant keyed by id", func(t *testing.T) {
		repo := newRepo(t)
		for _, cfg := range models.DefaultTenantConfigurations() {
			require.NoError(t, repo.Save(ctx, cfg))
		}

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for id, cfg := range all {
			assert.Equal(t, id, cfg.ID)
		}
	})

	t.Run("delete removes and then reports not found", func(t *testing.T) {
		repo := newRepo(t)
		cfg := models.RetailConfiguration()
		cfg.ID = "wealth"
		require.NoError(t, repo.Save(ctx, cfg))

		require.NoError(t, repo.Delete(ctx, "wealth"))
		_, err := repo.Get(ctx, "wealth")
		assert.True(t, errors.IsNotFoundError(err))
		assert.True(t, errors.IsNotFoundError(repo.Delete(ctx, "wealth")))
	})
}
