package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"minutesapi/internal/model"
)

type MockMinutesService struct {
	mock.Mock
}

func (m *MockMinutesService) Run(ctx context.Context, media model.MediaAsset) (*model.RenderedDocument, error) {
	args := m.Called(ctx, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RenderedDocument), args.Error(1)
}

func (m *MockMinutesService) Probe(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
