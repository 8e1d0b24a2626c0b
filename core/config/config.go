package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	loadDotenvOnce sync.Once

	cacheMu sync.RWMutex
	cache   = make(map[reflect.Type]any)
)

// Load populates cfg from environment variables using its env struct tags.
// A .env file in the working directory is loaded once per process before the
// first parse; a missing file is not an error.
//
// Each configuration type is parsed only once per application lifetime and
// cached, so repeated loads of the same type are cheap and consistent.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil target")
	}

	loadDotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	t := reflect.TypeOf(*cfg)

	cacheMu.RLock()
	cached, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", t, err)
	}

	cacheMu.Lock()
	// First writer wins so concurrent loaders observe one value.
	if cached, ok := cache[t]; ok {
		*cfg = cached.(T)
	} else {
		cache[t] = *cfg
	}
	cacheMu.Unlock()

	return nil
}

// MustLoad is Load that panics on failure. Useful during startup where a
// missing required variable should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
