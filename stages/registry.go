// Package stages provides the stage catalogue of the analyzer and a Registry resolving stage names into
// independent linepipe stages.
package stages

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fogfactory/linepipe"
)

// DefaultTypewriterDelay is the typewriter per-character delay when none is configured.
const DefaultTypewriterDelay = 100 * time.Millisecond

// Env is what a Factory may use to build a transform.
type Env struct {
	Console         *Console
	TypewriterDelay time.Duration
}

// Factory builds a fresh transform. It is called once per loaded stage, so a transform may keep state of its own.
type Factory func(env Env) linepipe.Transform

type entry struct {
	description string
	factory     Factory
}

// Registry implements linepipe.Loader over a set of named factories.
type Registry struct {
	env    Env
	opts   []linepipe.Option
	logger *zap.Logger

	mu      sync.Mutex
	order   []string
	entries map[string]entry
	live    map[linepipe.Stage]string
}

var _ linepipe.Loader = (*Registry)(nil)

// NewRegistry returns a registry holding the built-in stages. opts are given to every stage it loads.
func NewRegistry(env Env, logger *zap.Logger, opts ...linepipe.Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		env:     env,
		opts:    append([]linepipe.Option{linepipe.WithLogger(logger)}, opts...),
		logger:  logger,
		entries: make(map[string]entry),
		live:    make(map[linepipe.Stage]string),
	}

	r.Register("logger", "Logs all strings that pass through", func(env Env) linepipe.Transform {
		return Log(env.Console)
	})
	r.Register("typewriter", "Simulates typewriter effect with delays", func(env Env) linepipe.Transform {
		return Typewrite(env.Console, env.TypewriterDelay)
	})
	r.Register("uppercaser", "Converts strings to uppercase", func(Env) linepipe.Transform {
		return Uppercase
	})
	r.Register("rotator", "Moves every character to the right. Last character moves to the beginning.", func(Env) linepipe.Transform {
		return Rotate
	})
	r.Register("flipper", "Reverses the order of characters", func(Env) linepipe.Transform {
		return Flip
	})
	r.Register("expander", "Expands each character with spaces", func(Env) linepipe.Transform {
		return Expand
	})
	return r
}

// Register adds or replaces a stage. The transform built by factory never sees the Sentinel.
func (r *Registry) Register(name, description string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		r.order = append(r.order, name)
	}
	r.entries[name] = entry{description: description, factory: factory}
}

// Names returns the registered stage names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Description returns the usage description of a stage.
func (r *Registry) Description(name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name].description
}

// Load returns a new, uninitialized instance of the named stage.
func (r *Registry) Load(name string) (linepipe.Stage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", linepipe.ErrUnknownStage, name)
	}
	s := linepipe.NewRuntime(name, linepipe.PassSentinel(e.factory(r.env)), r.opts...)
	r.live[s] = name
	r.logger.Debug("stage loaded", zap.String("stage", name), zap.Int("instance", r.instances(name)))
	return s, nil
}

// Unload forgets a stage returned by Load. Unloading twice, or a stage from another loader, does nothing.
func (r *Registry) Unload(s linepipe.Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.live[s]
	if !ok {
		return
	}
	delete(r.live, s)
	r.logger.Debug("stage unloaded", zap.String("stage", name))
}

// Live returns the number of loaded stages not unloaded yet.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *Registry) instances(name string) int {
	return lo.CountBy(lo.Values(r.live), func(n string) bool { return n == name })
}
