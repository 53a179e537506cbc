package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/yourusername/kubmonitor/internal/cache"
	"github.com/yourusername/kubmonitor/internal/dashboard"
	"github.com/yourusername/kubmonitor/internal/datasource"
	"github.com/yourusername/kubmonitor/internal/diagnostic"
	"github.com/yourusername/kubmonitor/internal/i18n"
	"github.com/yourusername/kubmonitor/internal/model"
	"github.com/yourusername/kubmonitor/internal/terminal"
	"github.com/yourusername/kubmonitor/internal/ui"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"sigs.k8s.io/yaml"
)

// ErrNoAccessCheck is returned by CheckAccess for sources without RBAC
var ErrNoAccessCheck = errors.New("data source has no access checks")

type accessChecker interface {
	CheckAccess(ctx context.Context, namespace string) (*diagnostic.AccessReport, error)
}

// App represents the main application
type App struct {
	logger  *zap.Logger
	config  *Config
	version string

	source    datasource.DataSource
	bounded   *datasource.Bounded
	cache     *cache.TTLCache
	refresher *cache.Refresher
	snapshots dashboard.SnapshotProvider
	ctrl      *dashboard.Controller
}

// New creates a new App instance
func New(config *Config, version string) (*App, error) {
	logger, err := initLogger(config.LogLevel, config.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &App{
		logger:  logger,
		config:  config,
		version: version,
	}, nil
}

// Logger returns the application logger
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Setup builds the provider stack and the dashboard controller
func (a *App) Setup() error {
	if a.source != nil {
		return nil
	}
	if err := a.config.Validate(); err != nil {
		return err
	}

	a.logger.Info("Initializing data sources",
		zap.String("mode", a.config.SourceMode),
		zap.String("namespace", a.config.Namespace),
		zap.Bool("async", a.config.Async),
	)

	source, err := newSource(a.config, a.logger)
	if err != nil {
		return err
	}
	a.source = source
	a.bounded = datasource.NewBounded(source, datasource.NewLocalCollector(a.logger), a.config.Timeout)

	a.snapshots = a.bounded
	if a.config.Async {
		a.cache = cache.NewTTLCache(a.config.CacheTTL, a.logger)
		a.refresher = cache.NewRefresher(
			source,
			a.cache,
			a.config.RefreshInterval,
			a.config.Timeout,
			a.config.Namespace,
			a.logger,
		)
		a.snapshots = cache.NewSlotProvider(a.cache, a.refresher)
	}

	a.ctrl = dashboard.NewController(dashboard.Options{
		Namespace:          a.config.Namespace,
		RefreshInterval:    a.config.RefreshInterval,
		LogRefreshInterval: a.config.LogRefreshInterval,
		LogTailLines:       a.config.LogTailLines,
	}, a.snapshots, a.bounded, a.bounded, a.logger)

	if clipboard.Unsupported {
		a.logger.Info("No system clipboard, copy disabled")
	} else {
		a.ctrl.SetClipboard(systemClipboard{})
	}

	a.logger.Info("Data sources initialized successfully", zap.String("source", source.Name()))
	return nil
}

func newSource(cfg *Config, logger *zap.Logger) (datasource.DataSource, error) {
	if cfg.SourceMode == SourceMock {
		return datasource.NewMockSource(cfg.MockSeed, logger), nil
	}
	apiServer, err := datasource.NewAPIServerClient(cfg.Kubeconfig, cfg.Context, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create API Server client: %w", err)
	}
	return apiServer, nil
}

// Run starts the dashboard and blocks until the user quits or ctx is done
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("Starting kubmonitor",
		zap.String("version", a.version),
		zap.String("kubeconfig", a.config.Kubeconfig),
		zap.String("context", a.config.Context),
		zap.String("namespace", a.config.Namespace),
		zap.Duration("refresh_interval", a.config.RefreshInterval),
		zap.String("renderer", a.config.Renderer),
	)

	if err := a.Setup(); err != nil {
		return fmt.Errorf("failed to initialize data sources: %w", err)
	}

	a.preflight(ctx)

	if a.refresher != nil {
		if err := a.refresher.Start(); err != nil {
			return fmt.Errorf("failed to start refresher: %w", err)
		}
	}

	if a.config.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	renderer := ui.NewRenderer(i18n.NewLocalizer(a.config.Locale))

	if a.config.Renderer == RendererPlain {
		return a.runPlain(ctx, renderer)
	}
	if err := ui.RunProgram(ctx, a.ctrl, renderer, a.config.PollInterval, a.logger); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// preflight logs every permission the dashboard will be refused. It never
// stops startup: denied reads surface as stale errors in the header.
func (a *App) preflight(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	report, err := a.CheckAccess(checkCtx)
	if errors.Is(err, ErrNoAccessCheck) {
		return
	}
	if err != nil {
		a.logger.Warn("RBAC preflight failed", zap.Error(err))
		return
	}
	for _, denied := range report.Denied() {
		a.logger.Warn("Permission denied",
			zap.String("permission", denied.Requirement.String()),
			zap.Bool("optional", denied.Requirement.Optional),
			zap.String("hint", denied.Message(report.Namespace)),
		)
	}
}

// CheckAccess reviews the permissions the dashboard needs in its namespace
func (a *App) CheckAccess(ctx context.Context) (*diagnostic.AccessReport, error) {
	if err := a.Setup(); err != nil {
		return nil, err
	}
	checker, ok := a.source.(accessChecker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoAccessCheck, a.source.Name())
	}
	return checker.CheckAccess(ctx, a.config.Namespace)
}

func (a *App) runPlain(ctx context.Context, renderer *ui.Renderer) error {
	session, err := terminal.Open(os.Stdin, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	// restore the terminal on every exit path, panics included
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Error("Failed to restore terminal", zap.Error(err))
		}
	}()

	return ui.RunPlain(ctx, a.ctrl, session, renderer, a.config.PollInterval, a.logger)
}

// Snapshot fetches one snapshot straight from the source
func (a *App) Snapshot(ctx context.Context) (*model.ClusterSnapshot, error) {
	if err := a.Setup(); err != nil {
		return nil, err
	}
	snap, err := a.bounded.FetchClusterSnapshot(ctx, a.config.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return snap, nil
}

// WriteSnapshot encodes snap as yaml or json
func WriteSnapshot(w io.Writer, snap *model.ClusterSnapshot, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case "yaml", "":
		out, err = yaml.Marshal(snap)
	case "json":
		out, err = json.MarshalIndent(snap, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown output format %q (want yaml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Shutdown gracefully stops the application
func (a *App) Shutdown() error {
	a.logger.Info("Shutting down application...")

	if a.refresher != nil && a.refresher.GetStatus().IsRunning {
		if err := a.refresher.Stop(); err != nil {
			a.logger.Error("Failed to stop refresher", zap.Error(err))
		}
	}

	if a.source != nil {
		if err := a.source.Close(); err != nil {
			a.logger.Error("Failed to close data source", zap.Error(err))
		}
	}

	// Sync only flushes buffered log entries, ignore sync errors
	_ = a.logger.Sync()
	return nil
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// initLogger initializes the zap logger with file rotation support
func initLogger(levelStr, logFile string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if logFile == "" {
		logFile = defaultLogFile
	}

	// The terminal belongs to the dashboard, so logs only go to the file
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	zap.ReplaceGlobals(logger)
	return logger, nil
}
