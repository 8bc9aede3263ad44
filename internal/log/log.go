package log

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

var current atomic.Pointer[zap.Logger]

func init() { current.Store(zap.NewNop()) }

// New builds a zap logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	var ws zapcore.WriteSyncer
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		ws = zapcore.AddSync(os.Stdout)
	case "stderr":
		ws = zapcore.AddSync(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		ws = zapcore.AddSync(zapcore.Lock(f))
	}

	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	return zap.New(zapcore.NewCore(enc, ws, lvl), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Set installs l as the process logger.
func Set(l *zap.Logger) { current.Store(l) }

// L returns the process logger.
func L() *zap.Logger { return current.Load() }

func requestFields(c *fiber.Ctx, action string) []zap.Field {
	fs := []zap.Field{zap.String("action", action)}
	if c == nil {
		return fs
	}
	fs = append(fs,
		zap.String("ip", c.IP()),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
	)
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		fs = append(fs, zap.String("req_id", rid))
	}
	if uid, ok := c.Locals("user_id").(int64); ok && uid != 0 {
		fs = append(fs, zap.Int64("user_id", uid))
	}
	return fs
}

func write(level zapcore.Level, msg string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	fs := requestFields(c, action)
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	if len(fields) > 0 {
		fs = append(fs, zap.Any("fields", fields))
	}
	if ce := L().Check(level, msg); ce != nil {
		ce.Write(fs...)
	}
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, action, c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, action, c, action, err, fields)
}

// Access logs one entry per request once the handler chain has finished.
// Errors still on their way to the app's ErrorHandler are logged with the
// status that handler will send.
func Access() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		fs := requestFields(c, "http.access")
		fs = append(fs,
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
		L().Info("request", fs...)
		return err
	}
}
