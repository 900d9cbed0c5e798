// Package cli собирает дерево команд клиента receiptly.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mmeshcher/receiptly/internal/navigation"
	"github.com/mmeshcher/receiptly/internal/screen"
)

// Config содержит глобальные параметры клиента.
type Config struct {
	APIURL      string
	SessionFile string
	Timeout     time.Duration
	Retries     int
	TokenSecret string
	LogLevel    string
}

// Receipts объединяет операции сервиса чеков, нужные командам.
type Receipts interface {
	screen.ReceiptLister
	screen.ReceiptWriter
	screen.ReceiptReader
	screen.ImageUploader
}

// App содержит зависимости команд. Заполняется после разбора флагов, до запуска команды.
type App struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Sessions screen.Sessions
	Receipts Receipts
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewCommand строит дерево команд. Глобальные флаги пишутся в cfg.
func NewCommand(cfg *Config, app *App) *ff.Command {
	rootFlags := ff.NewFlagSet("receiptly")
	rootFlags.StringVar(&cfg.APIURL, 0, "api-url", "http://localhost:8080/api", "receipt service base URL")
	rootFlags.StringVar(&cfg.SessionFile, 0, "session-file", defaultSessionFile(), "session database path, empty keeps the session in memory")
	rootFlags.DurationVar(&cfg.Timeout, 0, "timeout", 10*time.Second, "HTTP request timeout")
	rootFlags.IntVar(&cfg.Retries, 0, "retries", 2, "retries for idempotent requests")
	rootFlags.StringVar(&cfg.TokenSecret, 0, "token-secret", "", "secret used to sign access tokens, empty means the development secret")
	rootFlags.StringVar(&cfg.LogLevel, 0, "log-level", "warn", "log level: debug, info, warn, error")

	return &ff.Command{
		Name:      "receiptly",
		Usage:     "receiptly [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "scan receipts and track spending",
		Flags:     rootFlags,
		Subcommands: []*ff.Command{
			app.signInCommand(rootFlags),
			app.signUpCommand(rootFlags),
			app.signOutCommand(rootFlags),
			app.onboardCommand(rootFlags),
			app.settingsCommand(rootFlags),
			app.dashboardCommand(rootFlags),
			app.listCommand(rootFlags),
			app.showCommand(rootFlags),
			app.addCommand(rootFlags),
			app.editCommand(rootFlags),
			app.deleteCommand(rootFlags),
			app.scanCommand(rootFlags),
		},
	}
}

// NewLogger создаёт логгер клиента, пишущий в w.
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

func (a *App) gate(s navigation.Screen) (navigation.State, error) {
	st := navigation.FromSession(a.Sessions.Current())
	if err := navigation.Allows(st, s); err != nil {
		return st, fmt.Errorf("%s: %w", strings.ToLower(string(s)), err)
	}
	return st, nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "receiptly", "session.db")
}
