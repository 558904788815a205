package integration

import (
	"context"
	"os"
	"testing"

	"github.com/cookbook/api/internal/domain/recipe"
	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/domain/taxonomy"
	"github.com/cookbook/api/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	code := m.Run()
	TerminateContainer()
	os.Exit(code)
}

func saveTerm(t *testing.T, repo taxonomy.TermRepository, kind taxonomy.Kind, name string) taxonomy.Term {
	t.Helper()
	term, err := taxonomy.NewTerm(kind, name)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), term))
	return *term
}

func TestRecipeRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	recipes := persistence.NewGormRecipeRepository(testDB.DB)
	terms := persistence.NewGormTermRepositories(testDB.DB)

	thai := saveTerm(t, terms[taxonomy.KindCuisine], taxonomy.KindCuisine, "Thai")
	vegan := saveTerm(t, terms[taxonomy.KindDiet], taxonomy.KindDiet, "Vegan")
	lime := saveTerm(t, terms[taxonomy.KindIngredient], taxonomy.KindIngredient, "Lime")

	t.Run("save and load with associations", func(t *testing.T) {
		r, err := recipe.NewRecipe("Green Curry")
		require.NoError(t, err)
		r.SetNote("medium heat")
		r.ReplaceAssociations(taxonomy.KindCuisine, []taxonomy.Term{thai})
		r.ReplaceAssociations(taxonomy.KindDiet, []taxonomy.Term{vegan})
		r.ReplaceAssociations(taxonomy.KindIngredient, []taxonomy.Term{lime})
		require.NoError(t, recipes.Save(ctx, r))
		require.NotZero(t, r.ID)

		loaded, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "Green Curry", loaded.Name)
		assert.Equal(t, "medium heat", loaded.Note)
		assert.Equal(t, []uint{thai.ID}, loaded.AssociationIDs(taxonomy.KindCuisine))
		assert.Equal(t, []uint{vegan.ID}, loaded.AssociationIDs(taxonomy.KindDiet))
		assert.Equal(t, []uint{lime.ID}, loaded.AssociationIDs(taxonomy.KindIngredient))
		assert.Empty(t, loaded.AssociationIDs(taxonomy.KindOccasion))
		assert.Equal(t, recipe.PDFStatus(""), loaded.PDFStatus)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		r, err := recipe.NewRecipe("Green Curry")
		require.NoError(t, err)

		err = recipes.Save(ctx, r)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("stale version is a conflict", func(t *testing.T) {
		r, err := recipe.NewRecipe("Pad Thai")
		require.NoError(t, err)
		require.NoError(t, recipes.Save(ctx, r))

		first, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		second, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)

		first.SetNote("first writer")
		require.NoError(t, recipes.Save(ctx, first))

		second.SetNote("second writer")
		assert.ErrorIs(t, recipes.Save(ctx, second), shared.ErrConcurrencyConflict)

		loaded, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, "first writer", loaded.Note)
	})

	t.Run("only the current job completes", func(t *testing.T) {
		r, err := recipe.NewRecipe("Tom Yum")
		require.NoError(t, err)
		_, err = r.RequestPDF("https://example.com/tom-yum")
		require.NoError(t, err)
		require.NoError(t, recipes.Save(ctx, r))
		oldJob := r.PDFJobID

		pending, err := recipes.FindPending(ctx)
		require.NoError(t, err)
		assert.Contains(t, pendingIDs(pending), r.ID)

		loaded, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		_, err = loaded.RequestPDF("https://example.com/tom-yum-v2")
		require.NoError(t, err)
		require.NoError(t, recipes.Save(ctx, loaded))

		ok, err := recipes.CompletePDFJob(ctx, r.ID, oldJob, recipe.Succeeded("recipe-old.pdf"))
		require.NoError(t, err)
		assert.False(t, ok, "superseded job must not attach")

		ok, err = recipes.CompletePDFJob(ctx, r.ID, loaded.PDFJobID, recipe.Succeeded("recipe-new.pdf"))
		require.NoError(t, err)
		assert.True(t, ok)

		final, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, recipe.PDFStatusSucceeded, final.PDFStatus)
		assert.Equal(t, "recipe-new.pdf", final.FileKey)

		ok, err = recipes.CompletePDFJob(ctx, r.ID, uuid.New(), recipe.Failed("late"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("deleting a term unlinks recipes", func(t *testing.T) {
		mint := saveTerm(t, terms[taxonomy.KindIngredient], taxonomy.KindIngredient, "Mint")
		r, err := recipe.NewRecipe("Larb")
		require.NoError(t, err)
		r.ReplaceAssociations(taxonomy.KindIngredient, []taxonomy.Term{lime, mint})
		require.NoError(t, recipes.Save(ctx, r))

		require.NoError(t, terms[taxonomy.KindIngredient].Delete(ctx, mint.ID))

		loaded, err := recipes.FindByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{lime.ID}, loaded.AssociationIDs(taxonomy.KindIngredient))
	})

	t.Run("delete removes the recipe", func(t *testing.T) {
		r, err := recipe.NewRecipe("Som Tam")
		require.NoError(t, err)
		r.ReplaceAssociations(taxonomy.KindCuisine, []taxonomy.Term{thai})
		require.NoError(t, recipes.Save(ctx, r))

		require.NoError(t, recipes.Delete(ctx, r.ID))
		_, err = recipes.FindByID(ctx, r.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, recipes.Delete(ctx, r.ID), shared.ErrNotFound)

		_, err = terms[taxonomy.KindCuisine].FindByID(ctx, thai.ID)
		assert.NoError(t, err, "terms survive recipe deletion")
	})
}

func TestTermRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	t.Cleanup(testDB.CleanTables)
	ctx := context.Background()

	for _, kind := range taxonomy.AllKinds() {
		t.Run(kind.Plural(), func(t *testing.T) {
			repo := persistence.NewGormTermRepository(testDB.DB, kind)
			b := saveTerm(t, repo, kind, "B "+kind.Label())
			a := saveTerm(t, repo, kind, "A "+kind.Label())

			all, err := repo.FindAll(ctx, shared.DefaultFilter())
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, a.ID, all[0].ID, "ordered by name")
			assert.Equal(t, b.ID, all[1].ID)

			exists, err := repo.ExistsByName(ctx, a.Name, 0)
			require.NoError(t, err)
			assert.True(t, exists)
			exists, err = repo.ExistsByName(ctx, a.Name, a.ID)
			require.NoError(t, err)
			assert.False(t, exists)

			dup, err := taxonomy.NewTerm(kind, a.Name)
			require.NoError(t, err)
			assert.ErrorIs(t, repo.Save(ctx, dup), shared.ErrAlreadyExists)

			found, err := repo.FindByIDs(ctx, []uint{a.ID, 999999})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, a.ID, found[0].ID)
		})
	}
}

func pendingIDs(rs []recipe.Recipe) []uint {
	ids := make([]uint, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}
