package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbites/backend/internal/models"
	"github.com/smartbites/backend/internal/testhelpers"
	"github.com/smartbites/backend/internal/types"
)

func fakeSaveRequest() *types.SaveRecipeRequest {
	title, ingredients, instructions := testhelpers.FakeRecipeFields()
	return &types.SaveRecipeRequest{Title: title, Ingredients: ingredients, Instructions: instructions}
}

func TestRecipeService_SaveRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("should save a new recipe", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		req := fakeSaveRequest()
		req.Cost = floatPtr(120)

		recipe, err := NewRecipeService(db).SaveRecipe(ctx, user.ID, req)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, recipe.ID)
		assert.Equal(t, user.ID, recipe.UserID)
		assert.Equal(t, req.Title, recipe.Title)
		assert.False(t, recipe.SavedAt.IsZero())
	})

	t.Run("should return the existing recipe for a duplicate", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		req := fakeSaveRequest()

		first, err := svc.SaveRecipe(ctx, user.ID, req)
		require.NoError(t, err)

		second, err := svc.SaveRecipe(ctx, user.ID, req)
		assert.ErrorIs(t, err, ErrDuplicateRecipe)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("should let different users save the same recipe", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		alice, _ := testhelpers.CreateTestUser(t, db)
		bob, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		req := fakeSaveRequest()

		_, err := svc.SaveRecipe(ctx, alice.ID, req)
		require.NoError(t, err)
		_, err = svc.SaveRecipe(ctx, bob.ID, req)
		assert.NoError(t, err)
	})

	t.Run("should store one row when the same recipe is saved concurrently", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		req := fakeSaveRequest()

		const attempts = 8
		ids := make([]uuid.UUID, attempts)
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				recipe, err := svc.SaveRecipe(ctx, user.ID, req)
				errs[i] = err
				if recipe != nil {
					ids[i] = recipe.ID
				}
			}()
		}
		wg.Wait()

		created := 0
		for i, err := range errs {
			if err == nil {
				created++
			} else {
				assert.ErrorIs(t, err, ErrDuplicateRecipe)
			}
			assert.Equal(t, ids[0], ids[i])
		}
		assert.Equal(t, 1, created)

		var count int64
		require.NoError(t, db.Model(&models.SavedRecipe{}).Where("user_id = ?", user.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("should reject a duplicate row at the database level", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		req := fakeSaveRequest()
		_, err := NewRecipeService(db).SaveRecipe(ctx, user.ID, req)
		require.NoError(t, err)

		err = db.Create(&models.SavedRecipe{
			UserID:       user.ID,
			Title:        req.Title,
			Ingredients:  req.Ingredients,
			Instructions: req.Instructions,
		}).Error
		assert.Error(t, err)
	})
}

func TestRecipeService_ListRecipes(t *testing.T) {
	ctx := context.Background()

	t.Run("should list newest first and only the user's own", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		other, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)

		older, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)
		newer, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)
		_, err = svc.SaveRecipe(ctx, other.ID, fakeSaveRequest())
		require.NoError(t, err)

		require.NoError(t, db.Model(&models.SavedRecipe{}).Where("id = ?", older.ID).
			UpdateColumn("saved_at", time.Now().Add(-time.Hour)).Error)

		recipes, err := svc.ListRecipes(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, recipes, 2)
		assert.Equal(t, newer.ID, recipes[0].ID)
		assert.Equal(t, older.ID, recipes[1].ID)
	})

	t.Run("should return an empty list for a new user", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)

		recipes, err := NewRecipeService(db).ListRecipes(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, recipes)
		assert.Empty(t, recipes)
	})
}

func TestRecipeService_UpdateRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply the given fields", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		saved, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)

		updated, err := svc.UpdateRecipe(ctx, user.ID, saved.ID, &types.UpdateRecipeRequest{
			Title: strPtr("Adobo"),
			Cost:  floatPtr(250),
		})
		require.NoError(t, err)
		assert.Equal(t, "Adobo", updated.Title)
		assert.Equal(t, saved.Ingredients, updated.Ingredients)
		require.NotNil(t, updated.Cost)
		assert.InDelta(t, 250, *updated.Cost, 0.001)
	})

	t.Run("should refuse to turn a recipe into a copy of another", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		first, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)
		second, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)

		_, err = svc.UpdateRecipe(ctx, user.ID, second.ID, &types.UpdateRecipeRequest{
			Title:        strPtr(first.Title),
			Ingredients:  strPtr(first.Ingredients),
			Instructions: strPtr(first.Instructions),
		})
		assert.ErrorIs(t, err, ErrDuplicateRecipe)
	})

	t.Run("should not touch another user's recipe", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		owner, _ := testhelpers.CreateTestUser(t, db)
		intruder, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		saved, err := svc.SaveRecipe(ctx, owner.ID, fakeSaveRequest())
		require.NoError(t, err)

		_, err = svc.UpdateRecipe(ctx, intruder.ID, saved.ID, &types.UpdateRecipeRequest{Title: strPtr("Mine now")})
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})
}

func TestRecipeService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("should delete a single recipe", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)
		saved, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)

		require.NoError(t, svc.DeleteRecipe(ctx, user.ID, saved.ID))
		assert.ErrorIs(t, svc.DeleteRecipe(ctx, user.ID, saved.ID), ErrRecipeNotFound)
	})

	t.Run("should report a missing recipe", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)

		err := NewRecipeService(db).DeleteRecipe(ctx, user.ID, uuid.New())
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})

	t.Run("should bulk delete only the user's own recipes", func(t *testing.T) {
		db := testhelpers.SetupTestDatabase(t)
		user, _ := testhelpers.CreateTestUser(t, db)
		other, _ := testhelpers.CreateTestUser(t, db)
		svc := NewRecipeService(db)

		a, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)
		b, err := svc.SaveRecipe(ctx, user.ID, fakeSaveRequest())
		require.NoError(t, err)
		theirs, err := svc.SaveRecipe(ctx, other.ID, fakeSaveRequest())
		require.NoError(t, err)

		deleted, err := svc.DeleteRecipes(ctx, user.ID, []uuid.UUID{a.ID, b.ID, theirs.ID, uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)

		remaining, err := svc.ListRecipes(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
