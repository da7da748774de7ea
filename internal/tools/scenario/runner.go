package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/battlegrid/internal/combat"
	"github.com/louisbranch/battlegrid/internal/core/dice"
	"github.com/louisbranch/battlegrid/internal/narration"
	"github.com/louisbranch/battlegrid/internal/platform/id"
)

// Config controls scenario execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Seed feeds the dice once queued faces run out.
	Seed int64
	// Locale picks the narration language of verbose logs.
	Locale string
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Seed:       1,
	}
}

// Runner executes Lua scenarios against an in-process engine. Each scenario
// gets a fresh engine.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
	seed       int64
	narrator   *narration.Narrator
	clock      func() time.Time
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
		seed:       cfg.Seed,
		narrator:   narration.New(cfg.Locale),
		clock:      time.Now,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	_, err = NewRunner(cfg).RunScenario(ctx, scenario)
	return err
}

// RunScenario executes the scenario steps and returns the final engine.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) (*combat.Engine, error) {
	if scenario == nil {
		return nil, errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))

	state := r.newState()
	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStepExpectingError(stepCtx, state, step)
		cancel()
		if err != nil {
			return state.engine, fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return state.engine, nil
}

func (r *Runner) newState() *scenarioState {
	state := &scenarioState{
		dice:     dice.NewSequenceSource(dice.NewSource(r.seed)),
		entities: map[string]string{},
	}
	state.engine = combat.New(combat.Config{
		Dice:  state.dice,
		Clock: r.clock,
		IDs:   id.Sequential("entity"),
	})
	if r.verbose {
		state.engine.Subscribe(narration.LogObserver(r.logger, r.narrator, state.engine.Registry))
	}
	return state
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

// scenarioState is the per-run engine plus the name to id map scripts use.
type scenarioState struct {
	engine   *combat.Engine
	dice     *dice.SequenceSource
	entities map[string]string
}

func (s *scenarioState) entityID(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("entity name is required")
	}
	entityID, ok := s.entities[name]
	if !ok {
		return "", fmt.Errorf("unknown entity %q", name)
	}
	return entityID, nil
}

func (s *scenarioState) entity(name string) (combat.Entity, error) {
	entityID, err := s.entityID(name)
	if err != nil {
		return combat.Entity{}, err
	}
	entity, ok := s.engine.Registry.Get(entityID)
	if !ok {
		return combat.Entity{}, fmt.Errorf("entity %q was removed", name)
	}
	return entity, nil
}

func (s *scenarioState) name(entityID string) string {
	if entity, ok := s.engine.Registry.Get(entityID); ok {
		return entity.Name
	}
	return entityID
}
