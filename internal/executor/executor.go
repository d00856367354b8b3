package executor

import (
	"log/slog"
	"time"

	perrors "screen-parser/internal/errors"
)

// Driver abstracts the physical input backend so execution logic can be
// tested without moving the real pointer.
type Driver interface {
	MoveMouse(x, y int)
	Click(button string) error
	TypeText(text string) error
	KeyTap(key string, modifiers ...string) error
	Drag(x, y int) error
	Scroll(direction string, amount int) error
	Position() (x, y int)
}

// Result reports the outcome of one executed action.
type Result struct {
	Success   bool      `json:"success"`
	Action    Kind      `json:"action"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// Results holds per-step outcomes for sequences.
	Results []Result `json:"results,omitempty"`
}

// Executor runs actions against a driver. Callers are responsible for
// serializing invocations through the exclusion gate; the executor itself
// assumes it has exclusive access to the device.
type Executor struct {
	driver Driver
	log    *slog.Logger
}

// New creates an executor over the given driver.
func New(driver Driver, log *slog.Logger) *Executor {
	return &Executor{driver: driver, log: log}
}

// Execute performs one action and reports its outcome. Sequences execute
// step by step and stop at the first failing step.
func (e *Executor) Execute(action Action) Result {
	e.log.Info("executing action", "kind", action.Kind())

	if seq, ok := action.(Sequence); ok {
		return e.executeSequence(seq)
	}

	result := Result{Action: action.Kind(), Timestamp: time.Now()}
	if err := action.perform(e.driver); err != nil {
		e.log.Error("action failed", "kind", action.Kind(), "error", err)
		result.Error = perrors.Wrap(perrors.CodeExecFailed, err, "execute %s", action.Kind()).Error()
		return result
	}
	result.Success = true
	return result
}

func (e *Executor) executeSequence(seq Sequence) Result {
	result := Result{Action: KindSequence, Success: true, Timestamp: time.Now()}
	for i, step := range seq.Actions {
		stepResult := e.Execute(step)
		result.Results = append(result.Results, stepResult)
		if !stepResult.Success {
			e.log.Error("sequence stopped at failing step", "step", i, "kind", step.Kind())
			result.Success = false
			break
		}
	}
	return result
}

// Position reports the current pointer location.
func (e *Executor) Position() (int, int) {
	return e.driver.Position()
}
