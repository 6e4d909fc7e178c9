package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"minutesapi/internal/model"
	"minutesapi/internal/service"
	serviceMocks "minutesapi/internal/service/mocks"
)

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestModelHealth(t *testing.T) {
	mockSvc := new(serviceMocks.MockMinutesService)
	app := fiber.New()
	app.Get("/health/model", ModelHealth(mockSvc))

	t.Run("healthy", func(t *testing.T) {
		mockSvc.On("Probe", mock.Anything).Return("東京です。", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health/model", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "東京です。", body["answer"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		mockSvc.On("Probe", mock.Anything).Return("", errors.New("no credentials")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health/model", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestCreateMinutes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockMinutesService)
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(mockSvc))

		doc := &model.RenderedDocument{
			Filename:    "minutes_meeting.docx",
			ContentType: model.DocxContentType,
			Data:        []byte("PK-docx"),
		}
		mockSvc.On("Run", mock.Anything, mock.MatchedBy(func(m model.MediaAsset) bool {
			return m.Filename == "meeting.mp3" && m.ContentType == "audio/mpeg" && m.Size == 5 && m.Body != nil
		})).Return(doc, nil).Once()

		body, ct := multipartBody(t, "meeting.mp3", "", []byte("audio"))
		req := httptest.NewRequest(http.MethodPost, "/minutes", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, model.DocxContentType, resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "minutes_meeting.docx")
		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, doc.Data, data)
		mockSvc.AssertExpectations(t)
	})

	t.Run("japanese filename survives download", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockMinutesService)
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(mockSvc))

		mockSvc.On("Run", mock.Anything, mock.Anything).Return(&model.RenderedDocument{
			Filename:    model.DocumentFilename("定例会議.m4a"),
			ContentType: model.DocxContentType,
			Data:        []byte("PK"),
		}, nil).Once()

		body, ct := multipartBody(t, "定例会議.m4a", "", []byte("audio"))
		req := httptest.NewRequest(http.MethodPost, "/minutes", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
		require.NoError(t, err)
		assert.Equal(t, "attachment", disposition)
		assert.Equal(t, "minutes_定例会議.docx", params["filename"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("client content type wins", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockMinutesService)
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(mockSvc))

		mockSvc.On("Run", mock.Anything, mock.MatchedBy(func(m model.MediaAsset) bool {
			return m.ContentType == "audio/x-m4a"
		})).Return(&model.RenderedDocument{Filename: "minutes_a.docx", ContentType: model.DocxContentType}, nil).Once()

		body, ct := multipartBody(t, "a.m4a", "audio/x-m4a", []byte("audio"))
		req := httptest.NewRequest(http.MethodPost, "/minutes", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("file required", func(t *testing.T) {
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(new(serviceMocks.MockMinutesService)))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/minutes", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockMinutesService)
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(mockSvc))

		body, ct := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, "/minutes", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		payload := decodeError(t, resp.Body)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", payload.Error.Code)
		assert.Contains(t, payload.Error.Message, "mp3, wav, m4a, mp4")
		mockSvc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
	})
}

func TestContentDisposition(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"minutes_meeting.docx", `attachment; filename="minutes_meeting.docx"; filename*=UTF-8''minutes_meeting.docx`},
		{"minutes_会議.docx", `attachment; filename="minutes___.docx"; filename*=UTF-8''minutes_%E4%BC%9A%E8%AD%B0.docx`},
		{`a"b.docx`, `attachment; filename="a_b.docx"; filename*=UTF-8''a%22b.docx`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentDisposition(tt.name))
		})
	}
}

func TestCreateMinutes_StageErrors(t *testing.T) {
	tests := []struct {
		stage      model.Stage
		wantStatus int
		wantCode   string
	}{
		{model.StageInit, http.StatusServiceUnavailable, "CONFIGURATION_ERROR"},
		{model.StageUpload, http.StatusBadGateway, "UPLOAD_ERROR"},
		{model.StageTranscribe, http.StatusBadGateway, "TRANSCRIPTION_ERROR"},
		{model.StageSummarize, http.StatusBadGateway, "SUMMARIZATION_ERROR"},
		{model.StageRender, http.StatusInternalServerError, "RENDER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			mockSvc := new(serviceMocks.MockMinutesService)
			app := fiber.New()
			app.Post("/minutes", CreateMinutes(mockSvc))

			stageErr := &service.StageError{Stage: tt.stage, Err: errors.New("secret internal detail")}
			mockSvc.On("Run", mock.Anything, mock.Anything).Return(nil, stageErr).Once()

			body, ct := multipartBody(t, "meeting.wav", "", []byte("audio"))
			req := httptest.NewRequest(http.MethodPost, "/minutes", body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			payload := decodeError(t, resp.Body)
			assert.Equal(t, tt.wantCode, payload.Error.Code)
			assert.Equal(t, stageErr.UserMessage(), payload.Error.Message)
			assert.NotContains(t, payload.Error.Message, "secret internal detail")
		})
	}

	t.Run("non-stage error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockMinutesService)
		app := fiber.New()
		app.Post("/minutes", CreateMinutes(mockSvc))
		mockSvc.On("Run", mock.Anything, mock.Anything).Return(nil, service.ErrBodyNil).Once()

		body, ct := multipartBody(t, "meeting.wav", "", []byte("audio"))
		req := httptest.NewRequest(http.MethodPost, "/minutes", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Error.Code)
	})
}

func TestRegisterRoutes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, new(serviceMocks.MockMinutesService), prometheus.NewRegistry())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
}
