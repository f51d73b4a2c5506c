package plugin_registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EngineLoader acquires an extraction engine. It is called lazily, the
// first time a strategy needs its engine.
type EngineLoader func(ctx context.Context) (any, error)

type namedLoader struct {
	name   string
	loader EngineLoader
}

// PluginRegistry holds the engine loaders of each extraction strategy and
// memoizes the first engine that loads successfully.
type PluginRegistry struct {
	mutex   sync.RWMutex
	loaders map[string][]namedLoader
	engines map[string]any
	group   singleflight.Group
	logger  *slog.Logger
}

func NewPluginRegistry(logger *slog.Logger) *PluginRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginRegistry{
		loaders: make(map[string][]namedLoader),
		engines: make(map[string]any),
		logger:  logger,
	}
}

// RegisterEngine appends a loader for strategy. The first loader registered
// for a strategy is the primary one; the others are fallbacks, tried in order.
func (pr *PluginRegistry) RegisterEngine(strategy, name string, loader EngineLoader) {
	pr.mutex.Lock()
	defer pr.mutex.Unlock()
	pr.loaders[strategy] = append(pr.loaders[strategy], namedLoader{name: name, loader: loader})
}

// Strategies returns the names of the strategies with at least one loader.
func (pr *PluginRegistry) Strategies() []string {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()
	names := make([]string, 0, len(pr.loaders))
	for name := range pr.loaders {
		names = append(names, name)
	}
	return names
}

// Loaded reports whether an engine for strategy has already been memoized.
func (pr *PluginRegistry) Loaded(strategy string) bool {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()
	_, ok := pr.engines[strategy]
	return ok
}

// Engine returns the memoized engine for strategy, loading it on first use.
// Concurrent first calls share a single load. A failed load is not
// memoized, so the next call tries again.
func (pr *PluginRegistry) Engine(ctx context.Context, strategy string) (any, error) {
	pr.mutex.RLock()
	engine, ok := pr.engines[strategy]
	pr.mutex.RUnlock()
	if ok {
		return engine, nil
	}

	// the shared load must not die with the first caller's request; each
	// caller still stops waiting when its own context ends
	loadCtx := context.WithoutCancel(ctx)
	ch := pr.group.DoChan(strategy, func() (interface{}, error) {
		pr.mutex.RLock()
		engine, ok := pr.engines[strategy]
		loaders := pr.loaders[strategy]
		pr.mutex.RUnlock()
		if ok {
			return engine, nil
		}
		if len(loaders) == 0 {
			return nil, fmt.Errorf("unknown engine strategy: %s", strategy)
		}

		engine, err := pr.load(loadCtx, strategy, loaders)
		if err != nil {
			return nil, err
		}

		pr.mutex.Lock()
		pr.engines[strategy] = engine
		pr.mutex.Unlock()
		return engine, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// EngineNames returns the loader names registered for strategy, primary first.
func (pr *PluginRegistry) EngineNames(strategy string) []string {
	pr.mutex.RLock()
	defer pr.mutex.RUnlock()
	names := make([]string, 0, len(pr.loaders[strategy]))
	for _, l := range pr.loaders[strategy] {
		names = append(names, l.name)
	}
	return names
}

func (pr *PluginRegistry) load(ctx context.Context, strategy string, loaders []namedLoader) (any, error) {
	var errs []error
	for i, l := range loaders {
		engine, err := l.loader(ctx)
		if err == nil && engine == nil {
			err = errors.New("loader returned no engine")
		}
		if err != nil {
			pr.logger.Warn("Engine load failed",
				slog.String("strategy", strategy),
				slog.String("engine", l.name),
				slog.Bool("fallback", i > 0),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", l.name, err))
			continue
		}
		pr.logger.Info("Engine loaded",
			slog.String("strategy", strategy),
			slog.String("engine", l.name),
			slog.Bool("fallback", i > 0))
		return engine, nil
	}
	return nil, fmt.Errorf("no %s engine could be loaded: %w", strategy, errors.Join(errs...))
}
