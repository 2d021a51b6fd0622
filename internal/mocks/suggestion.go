package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/smartbites/backend/internal/service"
)

// MockInferenceService is a mock implementation of the InferenceService interface
type MockInferenceService struct {
	mock.Mock
}

func (m *MockInferenceService) Generate(ctx context.Context, payload service.PromptPayload) (*service.InferenceResult, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InferenceResult), args.Error(1)
}

// MockPromptComposer is a mock implementation of the PromptComposer interface
type MockPromptComposer struct {
	mock.Mock
}

func (m *MockPromptComposer) Compose(prompt string, profile service.ProfileContext, image io.Reader) (service.PromptPayload, error) {
	args := m.Called(prompt, profile, image)
	return args.Get(0).(service.PromptPayload), args.Error(1)
}

// MockImageArchive is a mock implementation of the ImageArchive interface
type MockImageArchive struct {
	mock.Mock
}

func (m *MockImageArchive) Store(ctx context.Context, owner, filename string, data []byte) (string, error) {
	args := m.Called(ctx, owner, filename, data)
	return args.String(0), args.Error(1)
}

var (
	_ service.IAuthService         = (*MockAuthService)(nil)
	_ service.IProfileService      = (*MockProfileService)(nil)
	_ service.IRecipeService       = (*MockRecipeService)(nil)
	_ service.INutritionService    = (*MockNutritionService)(nil)
	_ service.IRecipeSearchService = (*MockRecipeSearchService)(nil)
	_ service.IPromptComposer      = (*MockPromptComposer)(nil)
	_ service.IInferenceService    = (*MockInferenceService)(nil)
	_ service.IImageArchive        = (*MockImageArchive)(nil)
)
