// app.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaoliu2354/huobao-canvas/internal/config"
	"github.com/xiaoliu2354/huobao-canvas/internal/eventhub"
	"github.com/xiaoliu2354/huobao-canvas/internal/models"
	"github.com/xiaoliu2354/huobao-canvas/internal/project"
	"github.com/xiaoliu2354/huobao-canvas/internal/provider"
	"github.com/xiaoliu2354/huobao-canvas/internal/storage"
	"github.com/xiaoliu2354/huobao-canvas/internal/task"
	"github.com/xiaoliu2354/huobao-canvas/internal/workflow"
)

const templateWatchDebounce = 500 * time.Millisecond

// App wires the core together: storage, settings, project store, model
// catalogue, workflow templates and the three generation tasks.
type App struct {
	ctx    context.Context
	logger *zap.Logger

	config   *config.Config
	db       kvBackend
	settings *config.Settings
	eventHub *eventhub.EventHub

	modelRegistry    *models.Registry
	projects         *project.Store
	templateRegistry *workflow.Registry
	templateWatcher  *workflow.Watcher

	transport *transport
	chat      *task.ChatSession
	image     *task.ImageTask
	video     *task.VideoTask
}

// NewApp creates an unstarted App.
func NewApp(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger}
}

// Startup initializes every subsystem. It must run before any binding is
// called.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx
	a.eventHub = eventhub.New(ctx)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.config = cfg

	db, err := openBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	a.settings = config.NewSettings(db)
	a.modelRegistry = models.NewRegistry()

	a.transport = &transport{}
	a.rebuildClient()

	// Project payloads carry node data and embedded media; compressing
	// them stretches the database considerably.
	a.projects = project.NewStore(storage.NewCompressed(db, 3), a.eventHub, a.logger)
	a.projects.Load()
	a.projects.Bootstrap()

	a.templateRegistry = workflow.NewRegistry()
	a.startTemplateWatcher()

	a.chat = task.NewChatSession(a.transport, task.ChatOptions{}, a.eventHub, a.logger)
	a.image = task.NewImageTask(a.transport, a.modelRegistry, a.eventHub, a.logger)
	a.video = task.NewVideoTask(a.transport, a.modelRegistry, a.eventHub, a.logger)

	a.logger.Info("startup complete", zap.String("data_dir", cfg.DataDir))
	return nil
}

// Shutdown releases resources. Any in-flight chat stream is cancelled so no
// network operation outlives the process.
func (a *App) Shutdown(ctx context.Context) {
	if a.chat != nil {
		a.chat.Close()
	}
	if a.templateWatcher != nil {
		a.templateWatcher.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("database close failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
}

// SetEventHubBroadcaster installs the event consumer (the websocket server).
func (a *App) SetEventHubBroadcaster(b eventhub.Broadcaster) {
	a.eventHub.SetBroadcaster(b)
}

// rebuildClient swaps the transport's provider client after a settings
// change; live task objects keep streaming through the same transport.
func (a *App) rebuildClient() {
	a.transport.swap(provider.FromSettings(a.settings, a.logger))
}

// startTemplateWatcher loads the template directory and keeps it hot.
func (a *App) startTemplateWatcher() {
	dir := filepath.Join(a.config.AppDir, "templates")

	templates, err := workflow.LoadDir(dir)
	if err != nil {
		a.logger.Warn("template load failed", zap.Error(err))
	}
	for _, t := range templates {
		if err := a.templateRegistry.Register(t); err != nil {
			a.logger.Warn("template rejected", zap.String("id", t.ID), zap.Error(err))
		}
	}

	watcher, err := workflow.Watch(dir, a.templateRegistry, templateWatchDebounce, a.logger)
	if err != nil {
		// The directory may not exist yet; templates still work from the
		// builtin catalogue.
		a.logger.Debug("template watcher unavailable", zap.Error(err))
		return
	}
	a.templateWatcher = watcher
}

// kvBackend is a closeable key-value store.
type kvBackend interface {
	storage.Store
	Close() error
}

// openBackend picks the persistence engine. SQLite is the default; setting
// HUOBAO_CANVAS_STORE=badger switches to the log-structured store, which
// holds up better under very large canvas payloads.
func openBackend(cfg *config.Config) (kvBackend, error) {
	if os.Getenv("HUOBAO_CANVAS_STORE") == "badger" {
		db, err := storage.OpenBadger(filepath.Join(cfg.DataDir, "badger"))
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	db, err := storage.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// transport is the indirection between the long-lived task objects and the
// replaceable provider client.
type transport struct {
	mu     sync.RWMutex
	client *provider.Client
}

func (t *transport) swap(client *provider.Client) {
	t.mu.Lock()
	t.client = client
	t.mu.Unlock()
}

func (t *transport) current() *provider.Client {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.client
}

func (t *transport) StreamChatCompletions(ctx context.Context, req task.ChatRequest) (<-chan string, <-chan error) {
	return t.current().StreamChatCompletions(ctx, req)
}

func (t *transport) GenerateImage(ctx context.Context, req task.ImageRequest, opts task.CallOptions) (*task.ImageResponse, error) {
	return t.current().GenerateImage(ctx, req, opts)
}

func (t *transport) CreateVideoTask(ctx context.Context, req task.VideoRequest, opts task.CallOptions) (*task.VideoSubmission, error) {
	return t.current().CreateVideoTask(ctx, req, opts)
}

func (t *transport) GetVideoTaskStatus(ctx context.Context, taskID string) (*task.VideoStatus, error) {
	return t.current().GetVideoTaskStatus(ctx, taskID)
}
