package generative

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"minutesapi/internal/config"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Gemini serves both pipeline model calls from one Vertex AI client.
type Gemini struct {
	client             *genai.Client
	transcriptionModel string
	summarizationModel string
}

// NewGemini creates a region-scoped Vertex AI client. Service account
// credentials are used when present, Application Default Credentials otherwise.
func NewGemini(ctx context.Context, gcp config.GCPConfig, models config.ModelConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  gcp.ProjectID,
		Location: gcp.Location,
	}

	if len(gcp.CredentialsJSON) > 0 {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: gcp.CredentialsJSON,
			Scopes:          []string{cloudPlatformScope},
		})
		if err != nil {
			return nil, fmt.Errorf("load service account: %w", err)
		}
		cc.Credentials = creds
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client:             client,
		transcriptionModel: models.Transcription,
		summarizationModel: models.Summarization,
	}, nil
}

// Transcribe sends the stored recording and the instruction as one request.
func (g *Gemini) Transcribe(ctx context.Context, locator, mimeType, instruction string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(locator, mimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.transcriptionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

// Summarize sends a text-only prompt.
func (g *Gemini) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.summarizationModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
