package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, locator, mimeType, instruction string) (string, error) {
	args := m.Called(ctx, locator, mimeType, instruction)
	return args.String(0), args.Error(1)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
