package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"minutesapi/internal/generative"
	"minutesapi/internal/model"
	"minutesapi/internal/prompt"
	"minutesapi/internal/render"
	"minutesapi/internal/storage"
)

// probeQuestion is asked by Probe to confirm the model answers at all.
const probeQuestion = "日本の首都はどこですか？"

// Backends are the external collaborators of one pipeline run.
type Backends struct {
	Storage     storage.Storage
	Transcriber generative.Transcriber
	Summarizer  generative.Summarizer
}

// Connector performs the authenticate/init stage.
type Connector interface {
	Connect(ctx context.Context) (*Backends, error)
}

// MinutesService defines the use cases for producing meeting minutes.
type MinutesService interface {
	// Run drives upload, transcription, summarization and rendering in order.
	// The first failing stage aborts the run with a *StageError. A nil media
	// body is rejected up front with ErrBodyNil.
	Run(ctx context.Context, media model.MediaAsset) (*model.RenderedDocument, error)

	// Probe connects and asks the summarization model a fixed question.
	Probe(ctx context.Context) (string, error)
}

// minutesService is a concrete implementation of MinutesService.
// It holds no per-run state; concurrent runs share nothing mutable.
type minutesService struct {
	connector Connector
	prompts   *prompt.Set
	observer  Observer
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures a MinutesService.
type Option func(*minutesService)

// WithObserver registers stage observers.
func WithObserver(obs ...Observer) Option {
	return func(s *minutesService) { s.observer = Observers(obs) }
}

// WithClock overrides the clock used for object names.
func WithClock(now func() time.Time) Option {
	return func(s *minutesService) { s.now = now }
}

// NewMinutesService constructs a new MinutesService.
func NewMinutesService(connector Connector, prompts *prompt.Set, opts ...Option) MinutesService {
	s := &minutesService{
		connector: connector,
		prompts:   prompts,
		observer:  Observers(nil),
		tracer:    otel.Tracer("minutesapi/service"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *minutesService) Run(ctx context.Context, media model.MediaAsset) (*model.RenderedDocument, error) {
	if media.Body == nil {
		return nil, ErrBodyNil
	}
	if RunIDFromContext(ctx) == "" {
		ctx = WithRunID(ctx, uuid.NewString())
	}
	contentType := media.ContentType
	if contentType == "" {
		contentType, _ = model.MediaTypeFor(media.Filename)
	}

	ctx, span := s.tracer.Start(ctx, "minutes.run", trace.WithAttributes(
		attribute.String("minutes.run_id", RunIDFromContext(ctx)),
		attribute.String("media.content_type", contentType),
		attribute.Int64("media.size", media.Size),
	))
	defer span.End()

	var backends *Backends
	err := s.stage(ctx, model.StageInit, func(ctx context.Context) error {
		b, err := s.connector.Connect(ctx)
		if err != nil {
			return err
		}
		backends = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	var locator string
	err = s.stage(ctx, model.StageUpload, func(ctx context.Context) error {
		key := storage.ObjectName(s.now(), media.Filename)
		info, err := backends.Storage.Put(ctx, key, media.Body, storage.PutObjectOptions{
			Size:        media.Size,
			ContentType: contentType,
			Metadata: map[string]string{
				"original-filename": url.QueryEscape(media.Filename),
			},
		})
		if err != nil {
			return fmt.Errorf("upload to storage: %w", err)
		}
		locator = backends.Storage.Locator(info.Key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var transcript string
	err = s.stage(ctx, model.StageTranscribe, func(ctx context.Context) error {
		text, err := backends.Transcriber.Transcribe(ctx, locator, contentType, s.prompts.Transcription)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return generative.ErrEmptyResponse
		}
		transcript = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	var minutes string
	err = s.stage(ctx, model.StageSummarize, func(ctx context.Context) error {
		p, err := s.prompts.Minutes(transcript)
		if err != nil {
			return err
		}
		text, err := backends.Summarizer.Summarize(ctx, p)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return generative.ErrEmptyResponse
		}
		minutes = text
		return nil
	})
	if err != nil {
		return nil, err
	}

	var doc *model.RenderedDocument
	err = s.stage(ctx, model.StageRender, func(ctx context.Context) error {
		data, err := render.Render(minutes, transcript)
		if err != nil {
			return err
		}
		doc = &model.RenderedDocument{
			Filename:    model.DocumentFilename(media.Filename),
			ContentType: model.DocxContentType,
			Data:        data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *minutesService) Probe(ctx context.Context) (string, error) {
	backends, err := s.connector.Connect(ctx)
	if err != nil {
		return "", stageErr(model.StageInit, err)
	}
	if err := backends.Storage.Ping(ctx); err != nil {
		return "", stageErr(model.StageUpload, err)
	}
	answer, err := backends.Summarizer.Summarize(ctx, probeQuestion)
	if err != nil {
		return "", stageErr(model.StageSummarize, err)
	}
	return answer, nil
}

// stage runs fn as one traced, observed pipeline step.
func (s *minutesService) stage(ctx context.Context, st model.Stage, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "minutes."+st.String())
	defer span.End()

	s.observer.StageStarted(ctx, st)
	start := time.Now()
	err := fn(ctx)
	s.observer.StageFinished(ctx, st, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, st.String()+" failed")
		return stageErr(st, err)
	}
	return nil
}
