package plugin_registry_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serisow/docextract/plugin_registry"
)

type mockEngine struct {
	name string
}

func TestRegisterAndGetEngine(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	registry.RegisterEngine("pdf", "mock", func(ctx context.Context) (any, error) {
		return &mockEngine{name: "mock"}, nil
	})

	engine, err := registry.Engine(context.Background(), "pdf")
	if err != nil {
		t.Fatalf("Expected to load engine, got error: %v", err)
	}
	if engine.(*mockEngine).name != "mock" {
		t.Errorf("Expected engine 'mock', got '%s'", engine.(*mockEngine).name)
	}
	if !registry.Loaded("pdf") {
		t.Error("Expected pdf engine to be memoized")
	}
}

func TestGetUnregisteredEngine(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	_, err := registry.Engine(context.Background(), "unknown")
	if err == nil {
		t.Fatal("Expected error when loading unregistered strategy, got nil")
	}

	expectedErrorMsg := "unknown engine strategy: unknown"
	if err.Error() != expectedErrorMsg {
		t.Errorf("Expected error '%s', got '%s'", expectedErrorMsg, err.Error())
	}
}

func TestEngineIsLoadedOnce(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	var calls int32
	registry.RegisterEngine("ocr", "counting", func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return &mockEngine{name: "counting"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.Engine(context.Background(), "ocr"); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := registry.Engine(context.Background(), "ocr"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected loader to run once, ran %d times", got)
	}
}

func TestFallbackLoaderUsedWhenPrimaryFails(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	registry.RegisterEngine("docx", "primary", func(ctx context.Context) (any, error) {
		return nil, errors.New("library missing")
	})
	registry.RegisterEngine("docx", "fallback", func(ctx context.Context) (any, error) {
		return &mockEngine{name: "fallback"}, nil
	})

	engine, err := registry.Engine(context.Background(), "docx")
	if err != nil {
		t.Fatalf("Expected fallback engine, got error: %v", err)
	}
	if engine.(*mockEngine).name != "fallback" {
		t.Errorf("Expected fallback engine, got '%s'", engine.(*mockEngine).name)
	}
}

func TestAllLoadersFailing(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	var calls int32
	registry.RegisterEngine("pdf", "primary", func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("primary broken")
	})
	registry.RegisterEngine("pdf", "fallback", func(ctx context.Context) (any, error) {
		return nil, errors.New("fallback broken")
	})

	_, err := registry.Engine(context.Background(), "pdf")
	if err == nil {
		t.Fatal("Expected error when every loader fails")
	}
	for _, want := range []string{"primary broken", "fallback broken", "no pdf engine"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to contain %q, got %q", want, err.Error())
		}
	}

	// failures are not memoized
	_, _ = registry.Engine(context.Background(), "pdf")
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("Expected primary loader to be retried, ran %d times", got)
	}
	if registry.Loaded("pdf") {
		t.Error("Failed load must not be memoized")
	}
}

func TestNilEngineCountsAsFailure(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)
	registry.RegisterEngine("txt", "nil", func(ctx context.Context) (any, error) {
		return nil, nil
	})

	if _, err := registry.Engine(context.Background(), "txt"); err == nil {
		t.Fatal("Expected error for loader returning nil engine")
	}
}

func TestCancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)

	started := make(chan struct{})
	release := make(chan struct{})
	registry.RegisterEngine("ocr", "slow", func(ctx context.Context) (any, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &mockEngine{name: "slow"}, nil
	})

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := registry.Engine(firstCtx, "ocr")
		firstErr <- err
	}()
	<-started

	type result struct {
		engine any
		err    error
	}
	second := make(chan result, 1)
	go func() {
		engine, err := registry.Engine(context.Background(), "ocr")
		second <- result{engine, err}
	}()

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected the cancelled caller to get context.Canceled, got %v", err)
	}

	close(release)
	res := <-second
	if res.err != nil {
		t.Fatalf("Expected the waiting caller to get the engine, got %v", res.err)
	}
	if res.engine.(*mockEngine).name != "slow" {
		t.Errorf("Unexpected engine %v", res.engine)
	}
	if !registry.Loaded("ocr") {
		t.Error("Expected the shared load to be memoized")
	}
}

func TestEngineNamesKeepsRegistrationOrder(t *testing.T) {
	registry := plugin_registry.NewPluginRegistry(nil)
	registry.RegisterEngine("pdf", "primary", func(ctx context.Context) (any, error) { return &mockEngine{}, nil })
	registry.RegisterEngine("pdf", "fallback", func(ctx context.Context) (any, error) { return &mockEngine{}, nil })

	names := registry.EngineNames("pdf")
	if strings.Join(names, ",") != "primary,fallback" {
		t.Errorf("Unexpected engine names %v", names)
	}
	if len(registry.EngineNames("docx")) != 0 {
		t.Error("Expected no names for an unregistered strategy")
	}
}
