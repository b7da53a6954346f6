package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hammamikhairi/cookalong/internal/config"
	"github.com/hammamikhairi/cookalong/internal/domain"
	"github.com/hammamikhairi/cookalong/internal/engine"
	"github.com/hammamikhairi/cookalong/internal/logger"
	"github.com/hammamikhairi/cookalong/internal/nlu"
	"github.com/hammamikhairi/cookalong/internal/recipe"
	"github.com/hammamikhairi/cookalong/internal/storage"
)

// app holds the wired dependencies of one invocation.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	store      domain.SessionStore
	manager    *engine.Manager
	recipes    domain.RecipeSource
	classifier domain.Classifier

	closers []io.Closer
}

// loadApp reads the configuration, applies flag overrides and wires the
// engine. Callers must call close.
func loadApp(ctx context.Context, flags *globalFlags, defaultLogFile string) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.store != "" {
		cfg.Store = flags.store
	}
	if flags.dataDir != "" {
		cfg.DataDir = flags.dataDir
	}
	if flags.recipesDir != "" {
		cfg.RecipesDir = flags.recipesDir
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	logFile := flags.logFile
	if logFile == "" {
		logFile = defaultLogFile
	}
	var out io.Writer = os.Stderr
	if logFile != "" && logFile != "stderr" {
		f, err := openLogFile(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", logFile, err)
		} else {
			out = f
			a.closers = append(a.closers, f)
		}
	}
	a.log = logger.New(cfg.Level(), out)
	a.log.Debug("configuration: %s", cfg)

	a.store, err = storage.Open(ctx, cfg.Store, cfg.DataDir, a.log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}

	if cfg.RecipesDir != "" {
		dir, err := recipe.NewDirSource(cfg.RecipesDir, a.log)
		if err != nil {
			a.close()
			return nil, err
		}
		a.recipes = dir
	} else {
		a.recipes = recipe.NewMemorySource(a.log)
	}

	var responder domain.Responder
	a.classifier, responder = wireNLU(cfg, a.log)

	a.manager, err = engine.Open(ctx, a.store, a.log, engine.WithResponder(responder))
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// wireNLU prefers the LLM backend when a key is configured and keeps the
// local implementations as fallback.
func wireNLU(cfg *config.Config, log *logger.Logger) (domain.Classifier, domain.Responder) {
	keywords := nlu.NewKeywordClassifier(log)
	offline := nlu.OfflineResponder{}
	if !cfg.HasOpenAI() {
		log.Info("AI disabled: set OPENAI_API_KEY to enable")
		return keywords, offline
	}

	client := nlu.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel, log)
	log.Info("AI enabled (model=%s)", cfg.OpenAIModel)
	return &nlu.FallbackClassifier{Primary: client, Secondary: keywords, Log: log},
		&nlu.FallbackResponder{Primary: client, Secondary: offline, Log: log}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.log != nil {
			a.log.Error("closing store: %v", err)
		}
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// resolveRecipe accepts either a recipe file path or a catalog ID.
func (a *app) resolveRecipe(ctx context.Context, ref string) (*domain.Recipe, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return recipe.LoadFile(ref)
	}
	r, err := a.recipes.Get(ctx, ref)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%q is neither a recipe file nor a known recipe id (see `cookalong recipes`)", ref)
	}
	return r, err
}

// say classifies an utterance against the session state and applies it.
func (a *app) say(ctx context.Context, id, utterance string) (engine.CommandResult, error) {
	view, err := a.manager.State(ctx, id)
	if err != nil {
		return engine.CommandResult{}, err
	}
	cmd, err := a.classifier.Classify(ctx, utterance, view)
	if err != nil {
		return engine.CommandResult{}, err
	}
	a.log.Debug("%q classified as %s", utterance, cmd.Kind())
	return a.manager.ApplyCommand(ctx, id, cmd)
}

// localSession adapts one session of the app to the terminal view.
type localSession struct {
	app *app
	id  string
}

func (s localSession) State(ctx context.Context) (domain.SessionView, error) {
	return s.app.manager.State(ctx, s.id)
}

func (s localSession) Say(ctx context.Context, utterance string) (string, error) {
	res, err := s.app.say(ctx, s.id, utterance)
	if err != nil {
		return "", err
	}
	reply := res.Response
	for _, alert := range res.Alerts {
		reply += "\n  ⏰ " + alert
	}
	return reply, nil
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
