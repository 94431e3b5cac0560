package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alphabot-dev/alphabot/alphabot/services"
	"github.com/alphabot-dev/alphabot/alphabot/transport"
)

// Server is the control panel: it accepts an appstate, reports its status and
// starts or stops the supervised bot process.
type Server struct {
	app          *fiber.App
	launcher     *Launcher
	appStatePath string
	version      string
	startedAt    time.Time
}

func NewServer(launcher *Launcher, appStatePath, version string) *Server {
	s := &Server{
		launcher:     launcher,
		appStatePath: appStatePath,
		version:      version,
		startedAt:    time.Now(),
	}

	app := fiber.New(fiber.Config{
		AppName:      "Alphabot Panel",
		ServerHeader: "Alphabot-Panel",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(requestLogger())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Post("/appstate", s.handleAppStateSubmit)
	api.Post("/appstate/capture", s.handleAppStateCapture)
	api.Get("/appstate/status", s.handleAppStateStatus)
	api.Post("/bot/start", s.handleBotStart)
	api.Post("/bot/stop", s.handleBotStop)
	api.Get("/bot/status", s.handleBotStatus)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Alphabot Panel API",
			"version": s.version,
		})
	})

	s.app = app
	return s
}

// Listen blocks serving the panel on addr.
func (s *Server) Listen(addr string) error {
	slog.Info("Panel listening",
		slog.String("type", "web"),
		slog.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown stops the HTTP server and the supervised bot.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.launcher.Stop(); err != nil {
		slog.Warn("Failed to stop bot during shutdown",
			slog.String("type", "web"),
			slog.String("error", err.Error()))
	}
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleAppStateSubmit accepts a raw cookie-jar export, validates it and
// writes it where the bot will pick it up.
func (s *Server) handleAppStateSubmit(c *fiber.Ctx) error {
	var state transport.AppState
	if err := c.BodyParser(&state); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid appstate JSON: "+err.Error())
	}
	if err := state.Validate(); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if err := transport.SaveAppState(s.appStatePath, state); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	slog.Info("Appstate saved via panel",
		slog.String("type", "web"),
		slog.String("user_id", state.UserID()))
	return c.JSON(fiber.Map{
		"success": true,
		"user_id": state.UserID(),
		"cookies": len(state),
	})
}

type captureRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAppStateCapture performs a headless login with the submitted
// credentials and stores the resulting appstate. Credentials are used once
// and never persisted.
func (s *Server) handleAppStateCapture(c *fiber.Ctx) error {
	var req captureRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	state, err := services.CaptureAppState(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	if err := transport.SaveAppState(s.appStatePath, state); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user_id": state.UserID(),
		"cookies": len(state),
	})
}

func (s *Server) handleAppStateStatus(c *fiber.Ctx) error {
	state, err := transport.LoadAppState(s.appStatePath)
	if err != nil {
		if errors.Is(err, transport.ErrInvalidAppState) {
			return c.JSON(fiber.Map{"present": true, "valid": false, "error": err.Error()})
		}
		return c.JSON(fiber.Map{"present": false, "valid": false})
	}
	return c.JSON(fiber.Map{
		"present": true,
		"valid":   true,
		"user_id": state.UserID(),
		"cookies": len(state),
	})
}

func (s *Server) handleBotStart(c *fiber.Ctx) error {
	if _, err := transport.LoadAppState(s.appStatePath); err != nil {
		return fiber.NewError(fiber.StatusPreconditionFailed,
			"no valid appstate, submit one before starting the bot")
	}

	if err := s.launcher.Start(); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleBotStop(c *fiber.Ctx) error {
	if err := s.launcher.Stop(); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleBotStatus(c *fiber.Ctx) error {
	state, pid, lastExit := s.launcher.Status()
	resp := fiber.Map{"state": string(state)}
	if pid != 0 {
		resp["pid"] = pid
	}
	if lastExit != "" {
		resp["last_exit"] = lastExit
	}
	return c.JSON(resp)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": code, "message": message},
	})
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		attrs := []any{
			slog.String("type", "web"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", c.IP()),
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		slog.Log(c.Context(), level, "HTTP request", attrs...)
		return err
	}
}
