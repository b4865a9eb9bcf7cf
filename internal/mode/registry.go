package mode

import (
	"sort"
	"strings"
	"sync"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
	"github.com/mesoscale/mesoscaler/internal/signal"
)

// Built-in trigger mode names.
const (
	ModeCPU    = "cpu"
	ModeMemory = "mem"
	ModeQueue  = "sqs"
	ModeAnd    = "and"
	ModeOr     = "or"
)

// Deps carries the signal providers factories may draw from. Queue is nil
// when no queue is configured.
type Deps struct {
	CPU    signal.Provider
	Memory signal.Provider
	Queue  signal.Provider
}

// Factory builds a mode from the scaling configuration.
type Factory func(deps Deps, cfg *config.ScalingConfig) (Mode, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	Register(ModeCPU, newCPUMode)
	Register(ModeMemory, newMemoryMode)
	Register(ModeQueue, newQueueMode)
	Register(ModeAnd, newAndMode)
	Register(ModeOr, newOrMode)
}

// Register makes a mode available under the given name, case insensitive.
// It panics if the name is already taken, like database/sql does for
// drivers: duplicate registrations are programmer errors, not runtime
// conditions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if factory == nil {
		panic("mode: Register factory is nil")
	}
	name = strings.ToLower(name)
	if _, dup := registry[name]; dup {
		panic("mode: Register called twice for " + name)
	}
	registry[name] = factory
}

// New builds the mode registered under name.
func New(name string, deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	registryMu.RLock()
	factory, ok := registry[strings.ToLower(name)]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.NewConfigError("no such trigger mode", errors.ErrUnknownMode).
			WithField("scaling.trigger_mode").
			WithValue(name)
	}
	return factory(deps, cfg)
}

// Names lists the registered mode names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ============================================================================
// Built-in Factories
// ============================================================================

func newCPUMode(deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	band, err := singleBand(ModeCPU, cfg)
	if err != nil {
		return nil, err
	}
	return NewSingleMode(ModeCPU, deps.CPU, band), nil
}

func newMemoryMode(deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	band, err := singleBand(ModeMemory, cfg)
	if err != nil {
		return nil, err
	}
	return NewSingleMode(ModeMemory, deps.Memory, band), nil
}

func newQueueMode(deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	if deps.Queue == nil {
		return nil, errors.NewConfigError("sqs mode requires queue settings", errors.ErrConfigurationInvalid).
			WithField("queue.url")
	}
	band, err := singleBand(ModeQueue, cfg)
	if err != nil {
		return nil, err
	}
	return NewSingleMode(ModeQueue, deps.Queue, band), nil
}

func newAndMode(deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	left, right, err := combinedChildren(ModeAnd, deps, cfg)
	if err != nil {
		return nil, err
	}
	return NewAndMode(ModeAnd, left, right), nil
}

func newOrMode(deps Deps, cfg *config.ScalingConfig) (Mode, error) {
	left, right, err := combinedChildren(ModeOr, deps, cfg)
	if err != nil {
		return nil, err
	}
	return NewOrMode(ModeOr, left, right), nil
}

// singleBand extracts the one range pair a single-dimension mode takes.
func singleBand(name string, cfg *config.ScalingConfig) (Band, error) {
	if cfg.Dimensions() != 1 {
		return Band{}, errors.NewConfigError(name+" mode takes exactly one range pair", errors.ErrConfigurationInvalid).
			WithField("scaling.min_range").
			WithValue(cfg.Dimensions())
	}
	return Band{Min: cfg.MinRange[0], Max: cfg.MaxRange[0]}, nil
}

// combinedChildren builds the cpu and memory children of a combinator.
// Range pairs are ordered [cpu, memory].
func combinedChildren(name string, deps Deps, cfg *config.ScalingConfig) (Mode, Mode, error) {
	if cfg.Dimensions() != 2 {
		return nil, nil, errors.NewConfigError(name+" mode takes exactly two range pairs", errors.ErrConfigurationInvalid).
			WithField("scaling.min_range").
			WithValue(cfg.Dimensions())
	}
	cpu := NewSingleMode(ModeCPU, deps.CPU, Band{Min: cfg.MinRange[0], Max: cfg.MaxRange[0]})
	mem := NewSingleMode(ModeMemory, deps.Memory, Band{Min: cfg.MinRange[1], Max: cfg.MaxRange[1]})
	return cpu, mem, nil
}
