// Package server exposes the emotion timeline pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/emotion-timeline/config"
	"github.com/maastricht-university/emotion-timeline/emotion"
	"github.com/maastricht-university/emotion-timeline/orchestrator"
)

// Analyzer runs the pipeline on a WAV or MP3 file.
type Analyzer interface {
	Analyze(ctx context.Context, audioPath string) (*orchestrator.Result, error)
}

type analyzeResponse struct {
	RunID    string                       `json:"run_id"`
	Timeline []orchestrator.TimelineEntry `json:"timeline"`
	Summary  orchestrator.Summary         `json:"summary"`
}

// New builds the fiber app serving POST /analyze and GET /healthz.
func New(a Analyzer, c cfg.Server, log logrus.FieldLogger) *fiber.App {
	limit := c.MaxUploadMB
	if limit <= 0 {
		limit = 50
	}
	app := fiber.New(fiber.Config{
		AppName:               "emotion-timeline",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(requestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// POST /analyze - multipart field "audio" holding a WAV or MP3 file
	app.Post("/analyze", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("audio")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No audio file"})
		}

		tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(fh.Filename))
		if err != nil {
			return err
		}
		path := tmp.Name()
		tmp.Close()
		defer os.Remove(path)

		if err := c.SaveFile(fh, path); err != nil {
			return err
		}

		res, err := a.Analyze(c.UserContext(), path)
		if err != nil {
			log.WithError(err).WithField("file", fh.Filename).Warn("analysis failed")
			return c.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
		}
		log.WithFields(logrus.Fields{
			"run":      res.RunID,
			"file":     fh.Filename,
			"segments": len(res.Timeline),
			"dominant": res.Summary.Dominant,
		}).Info("analysis done")

		timeline := res.Timeline
		if timeline == nil {
			timeline = []orchestrator.TimelineEntry{}
		}
		return c.JSON(analyzeResponse{RunID: res.RunID, Timeline: timeline, Summary: res.Summary})
	})

	return app
}

func statusFor(err error) int {
	var ae *orchestrator.AdapterError
	switch {
	case errors.Is(err, orchestrator.ErrInput):
		return fiber.StatusBadRequest
	case orchestrator.IsTimeout(err):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, emotion.ErrContractViolation), errors.As(err, &ae):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func requestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		entry := log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  c.Response().StatusCode(),
			"elapsed": time.Since(start).Round(time.Millisecond),
		})
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			entry.Error("request")
		} else {
			entry.Info("request")
		}
		return nil
	}
}
