package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/sprintr/internal/log"
	loglogrus "github.com/sadopc/sprintr/internal/log/logrus"
	"github.com/sadopc/sprintr/internal/planfile"
	"github.com/sadopc/sprintr/internal/store"
	"github.com/sadopc/sprintr/internal/tui"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"

	loggerTypeDefault = "default"
	loggerTypeJSON    = "json"
)

type config struct {
	DBPath     string
	PlanPath   string
	LogFile    string
	LoggerType string
	Debug      bool
	NoLog      bool
}

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) (err error) {
	app := kingpin.New("sprintr", "Terminal focus timer for multi-task projects.")
	app.Version(Version)
	app.DefaultEnvars()

	cfg := config{}
	app.Flag("db-path", "SQLite database path (defaults to ~/.config/sprintr/sprintr.db).").StringVar(&cfg.DBPath)
	app.Flag("plan", "YAML plan file to set up as the active project on start.").StringVar(&cfg.PlanPath)
	app.Flag("log-file", "File the logs are written to (defaults to sprintr.log next to the database).").StringVar(&cfg.LogFile)
	app.Flag("logger", "Log format.").Default(loggerTypeDefault).EnumVar(&cfg.LoggerType, loggerTypeDefault, loggerTypeJSON)
	app.Flag("debug", "Enable debug logging.").BoolVar(&cfg.Debug)
	app.Flag("no-log", "Disable logging.").BoolVar(&cfg.NoLog)

	if _, err := app.Parse(args[1:]); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("could not resolve database path: %w", err)
		}
	}

	logger, closeLog, err := getLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var plan *planfile.Plan
	if cfg.PlanPath != "" {
		loaded, err := planfile.Load(cfg.PlanPath)
		if err != nil {
			return fmt.Errorf("could not load plan: %w", err)
		}
		plan = &loaded
	}

	s, err := store.New(store.Config{DBPath: cfg.DBPath, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not open database: %w", err)
	}
	defer s.Close()

	model, err := tui.NewApp(tui.Config{Store: s, Logger: logger, Plan: plan, Bell: stdout})
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithInput(stdin), tea.WithOutput(stdout))

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// UI.
	{
		g.Add(
			func() error {
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("ui failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				p.Quit()
			},
		)
	}

	logger.Infof("Starting sprintr with database %s", cfg.DBPath)
	return g.Run()
}

// getLogger returns the application logger. The terminal belongs to the UI so
// logs always go to a file.
func getLogger(cfg config) (log.Logger, func(), error) {
	if cfg.NoLog {
		return log.Noop, func() {}, nil
	}

	path := cfg.LogFile
	if path == "" {
		path = filepath.Join(filepath.Dir(cfg.DBPath), "sprintr.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("could not create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file: %w", err)
	}

	logrusLog := logrus.New()
	logrusLog.Out = f
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if cfg.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch cfg.LoggerType {
	case loggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})
	case loggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger, func() { f.Close() }, nil
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
