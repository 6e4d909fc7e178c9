package handler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"minutesapi/internal/model"
	"minutesapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, svc service.MinutesService, gatherer prometheus.Gatherer) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health/model", ModelHealth(svc))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Post("/minutes", CreateMinutes(svc))
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ModelHealth godoc
// @Summary Connectivity check against storage and the generative model
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health/model [get]
func ModelHealth(svc service.MinutesService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		answer, err := svc.Probe(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "answer": answer})
	}
}

// CreateMinutes godoc
// @Summary Generate meeting minutes from a recording
// @Accept multipart/form-data
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Param file formData file true "mp3, wav, m4a or mp4 recording"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /minutes [post]
func CreateMinutes(svc service.MinutesService) fiber.Handler {
	accepted := strings.Join(model.AcceptedExtensions(), ", ")

	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		ct, ok := model.MediaTypeFor(fh.Filename)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_MEDIA_TYPE",
				fmt.Sprintf("unsupported file type; accepted: %s", accepted))
		}
		if h := fh.Header.Get(fiber.HeaderContentType); h != "" && h != fiber.MIMEOctetStream {
			ct = h
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		doc, err := svc.Run(c.UserContext(), model.MediaAsset{
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return writeStageError(c, err)
		}

		c.Set(fiber.HeaderContentDisposition, contentDisposition(doc.Filename))
		c.Set(fiber.HeaderContentType, doc.ContentType)
		return c.Status(fiber.StatusOK).Send(doc.Data)
	}
}

// contentDisposition builds an attachment header that keeps non-ASCII names
// intact via RFC 5987 filename*, with an ASCII filename for older clients.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(name))
}
