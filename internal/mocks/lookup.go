package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/smartbites/backend/internal/service"
)

// MockNutritionService is a mock implementation of the NutritionService interface
type MockNutritionService struct {
	mock.Mock
}

func (m *MockNutritionService) Lookup(ctx context.Context, foodName string) (json.RawMessage, error) {
	args := m.Called(ctx, foodName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockRecipeSearchService is a mock implementation of the RecipeSearchService interface
type MockRecipeSearchService struct {
	mock.Mock
}

func (m *MockRecipeSearchService) Search(ctx context.Context, ingredients []string) ([]service.CandidateRecipe, error) {
	args := m.Called(ctx, ingredients)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CandidateRecipe), args.Error(1)
}
