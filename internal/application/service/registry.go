package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

// Handler executes one action. The browser session is injected by Invoke
// and may be nil for actions that do not touch the page.
type Handler func(ctx context.Context, browser output.BrowserPort, args []string) entity.ActionResult

// Action is a registered, schema-described operation the loop can invoke.
type Action struct {
	Name        string
	Description string
	Params      []entity.ParamSpec
	Handler     Handler
}

// Signature renders "name(param, param?)" for the system prompt.
func (a Action) Signature() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		name := p.Name
		if !p.Required {
			name += "?"
		}
		parts[i] = name
	}
	return a.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ActionRegistry maps action names to handlers. Built-in and custom actions
// share one namespace; registering a name twice replaces the earlier entry
// (last write wins), which lets callers override built-ins.
type ActionRegistry struct {
	mu      sync.RWMutex
	order   []string
	actions map[string]Action
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{actions: make(map[string]Action)}
}

func (r *ActionRegistry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[a.Name]; !exists {
		r.order = append(r.order, a.Name)
	}
	r.actions[a.Name] = a
}

func (r *ActionRegistry) Resolve(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[name]
	return a, ok
}

// All returns the registered actions in first-registration order.
func (r *ActionRegistry) All() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Action, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.actions[name])
	}
	return out
}

// Invoke resolves and executes an action. A missing action or a failing or
// panicking handler is converted into a failed ActionResult; nothing
// propagates to the caller.
func (r *ActionRegistry) Invoke(ctx context.Context, name string, args []string, browser output.BrowserPort) (res entity.ActionResult) {
	action, ok := r.Resolve(name)
	if !ok {
		return entity.Failed(fmt.Sprintf("action not found: %s", name))
	}

	args, err := normalizeArgs(action, args)
	if err != nil {
		return entity.Failed(fmt.Sprintf("error executing %s: %v", name, err))
	}

	defer func() {
		if p := recover(); p != nil {
			res = entity.Failed(fmt.Sprintf("error executing %s: %v", name, p))
		}
	}()

	res = action.Handler(ctx, browser, args)
	if !res.Success && res.Error == "" {
		res.Error = fmt.Sprintf("error executing %s", name)
	}
	return res
}

// normalizeArgs checks arity against the declared schema, fills defaults
// for trailing optional parameters, and validates typed values.
func normalizeArgs(action Action, args []string) ([]string, error) {
	if len(args) > len(action.Params) {
		return nil, fmt.Errorf("too many arguments: got %d, schema allows %d", len(args), len(action.Params))
	}

	out := make([]string, len(action.Params))
	for i, p := range action.Params {
		if i < len(args) && args[i] != "" {
			out[i] = args[i]
		} else if p.Required {
			return nil, fmt.Errorf("missing required parameter %q", p.Name)
		} else {
			out[i] = p.Default
		}

		switch p.Type {
		case entity.ParamTypeInt:
			if out[i] != "" {
				if _, err := strconv.Atoi(out[i]); err != nil {
					return nil, fmt.Errorf("parameter %q must be an integer, got %q", p.Name, out[i])
				}
			}
		case entity.ParamTypeFloat:
			if out[i] != "" {
				if _, err := strconv.ParseFloat(out[i], 64); err != nil {
					return nil, fmt.Errorf("parameter %q must be a number, got %q", p.Name, out[i])
				}
			}
		}
	}
	return out, nil
}
