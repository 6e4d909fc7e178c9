// Package generative wraps the Gemini models used for transcription and
// summarization.
package generative

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Transcriber converts a stored recording into text.
type Transcriber interface {
	// Transcribe reads the object at locator and follows instruction.
	Transcribe(ctx context.Context, locator, mimeType, instruction string) (string, error)
}

// Summarizer answers a single text prompt.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}
