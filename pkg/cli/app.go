package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"scriptura/pkg/agent"
	"scriptura/pkg/config"
	"scriptura/pkg/llm"
	_ "scriptura/pkg/llm/autoload" // registers LLM providers
	"scriptura/pkg/monitor"
	"scriptura/pkg/router"
	"scriptura/pkg/scripture"
	"scriptura/pkg/store"
	"scriptura/pkg/store/db"
	"scriptura/pkg/tools"
	"scriptura/pkg/transcript"
)

// app is everything one process needs to answer questions.
type app struct {
	cfg        *config.Config
	system     *config.SystemStore
	store      *store.Store
	router     *router.Router
	transcript *transcript.BoltRecorder
}

// loadApp reads the config files and opens the store. withAgent controls
// whether an LLM client is built; without one, delegated prompts fail with
// router.ErrAgent and fast-path lookups still work.
func loadApp(ctx context.Context, withAgent bool) (*app, error) {
	cfg, sysCfg, err := config.Load(configPath, systemPath)
	if err != nil {
		return nil, err
	}
	monitor.SetupSlog(sysCfg.LogLevel)

	driver, err := db.Open(ctx, cfg.Store, seed)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &app{
		cfg:    cfg,
		system: config.NewSystemStore(sysCfg),
		store:  store.New(driver),
	}

	var delegator router.Delegator
	if withAgent {
		engine, err := a.buildEngine()
		if err != nil {
			slog.Warn("Agent unavailable, only direct lookups will be answered", "error", err)
		} else {
			delegator = engine
		}
	}

	a.router = router.New(scripture.NewParser(cfg.DefaultTranslation), a.store, delegator, cfg.SystemPrompt)
	return a, nil
}

func (a *app) buildEngine() (*agent.Engine, error) {
	sys := a.system.Get()

	client, err := llm.NewFromConfig(a.cfg.LLM, sys)
	if err != nil {
		return nil, err
	}

	registry := tools.NewScriptureRegistry(a.store, a.cfg.DefaultTranslation, nil)
	engine := agent.NewEngine(client, registry, a.system)

	if sys.TranscriptPath != "" {
		rec, err := transcript.Open(sys.TranscriptPath)
		if err != nil {
			slog.Warn("Transcripts disabled", "path", sys.TranscriptPath, "error", err)
		} else {
			a.transcript = rec
			engine.SetRecorder(rec)
			a.pruneTranscripts()
		}
	}
	return engine, nil
}

func (a *app) pruneTranscripts() {
	hours := a.system.Get().TranscriptRetentionHours
	if a.transcript == nil || hours <= 0 {
		return
	}
	n, err := a.transcript.Prune(time.Duration(hours) * time.Hour)
	if err != nil {
		slog.Warn("Failed to prune transcripts", "error", err)
		return
	}
	if n > 0 {
		slog.Info("Pruned transcripts", "removed", n, "retention_hours", hours)
	}
}

func (a *app) Close() {
	if a.transcript != nil {
		if err := a.transcript.Close(); err != nil {
			slog.Warn("Failed to close transcripts", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close store", "error", err)
	}
}
