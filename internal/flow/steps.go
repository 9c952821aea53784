package flow

import (
	"fmt"
	"sync"
)

// Step names one stage of a short user-facing flow.
type Step string

// Controller tracks which step of a flow is active. Any declared step is
// reachable from any other (backtracking included); the one exception is a
// terminal step, which ends the instance. The controller itself never talks
// to the network.
type Controller struct {
	mu       sync.Mutex
	steps    map[Step]bool
	terminal map[Step]bool
	initial  Step
	current  Step
}

func NewController(initial Step, steps []Step, terminal ...Step) (*Controller, error) {
	declared := make(map[Step]bool, len(steps))
	for _, s := range steps {
		declared[s] = true
	}
	if !declared[initial] {
		return nil, fmt.Errorf("flow: initial step %q is not declared", initial)
	}

	terminalSet := make(map[Step]bool, len(terminal))
	for _, s := range terminal {
		if !declared[s] {
			return nil, fmt.Errorf("flow: terminal step %q is not declared", s)
		}
		terminalSet[s] = true
	}

	return &Controller{
		steps:    declared,
		terminal: terminalSet,
		initial:  initial,
		current:  initial,
	}, nil
}

func (c *Controller) Current() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// GoTo activates the given step. It fails for undeclared steps and for any
// transition out of a terminal step; everything else is allowed.
func (c *Controller) GoTo(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.steps[step] {
		return fmt.Errorf("flow: unknown step %q", step)
	}
	if c.terminal[c.current] {
		return fmt.Errorf("flow: flow already finished at %q", c.current)
	}

	c.current = step
	return nil
}

// Reset returns the flow to its initial step, dropping any progress. Called
// when the owning dialog closes.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.initial
}

// Finished reports whether the flow has reached a terminal step.
func (c *Controller) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal[c.current]
}
