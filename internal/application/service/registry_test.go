package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskagent/internal/application/port/output"
	"taskagent/internal/domain/entity"
)

func echoAction(name, reply string) Action {
	return Action{
		Name: name,
		Handler: func(_ context.Context, _ output.BrowserPort, _ []string) entity.ActionResult {
			return entity.Extracted(reply)
		},
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	reg := NewActionRegistry()
	reg.Register(echoAction("greet", "first"))
	reg.Register(echoAction("greet", "second"))

	res := reg.Invoke(context.Background(), "greet", nil, nil)
	require.True(t, res.Success)
	assert.Equal(t, "second", res.ExtractedContent)

	// Re-registration keeps a single entry.
	assert.Len(t, reg.All(), 1)
}

func TestRegistryNotFound(t *testing.T) {
	reg := NewActionRegistry()

	res := reg.Invoke(context.Background(), "missing", nil, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "action not found: missing", res.Error)
}

func TestRegistryPanicContained(t *testing.T) {
	reg := NewActionRegistry()
	reg.Register(Action{
		Name: "boom",
		Handler: func(_ context.Context, _ output.BrowserPort, _ []string) entity.ActionResult {
			panic("handler exploded")
		},
	})

	res := reg.Invoke(context.Background(), "boom", nil, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
	assert.Contains(t, res.Error, "handler exploded")
}

func TestRegistryArityAndDefaults(t *testing.T) {
	var got []string
	reg := NewActionRegistry()
	reg.Register(Action{
		Name: "scroll",
		Params: []entity.ParamSpec{
			{Name: "amount", Type: entity.ParamTypeInt, Default: "500"},
		},
		Handler: func(_ context.Context, _ output.BrowserPort, args []string) entity.ActionResult {
			got = args
			return entity.Extracted("ok")
		},
	})

	res := reg.Invoke(context.Background(), "scroll", nil, nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"500"}, got)

	res = reg.Invoke(context.Background(), "scroll", []string{"250"}, nil)
	require.True(t, res.Success)
	assert.Equal(t, []string{"250"}, got)

	res = reg.Invoke(context.Background(), "scroll", []string{"a", "b"}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "too many arguments")
}

func TestRegistryMissingRequiredParam(t *testing.T) {
	reg := NewActionRegistry()
	reg.Register(Action{
		Name: "click",
		Params: []entity.ParamSpec{
			{Name: "selector", Type: entity.ParamTypeString, Required: true},
		},
		Handler: func(_ context.Context, _ output.BrowserPort, _ []string) entity.ActionResult {
			return entity.Extracted("ok")
		},
	})

	res := reg.Invoke(context.Background(), "click", nil, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, `missing required parameter "selector"`)
}

func TestRegistryTypedParamValidation(t *testing.T) {
	reg := NewActionRegistry()
	reg.Register(Action{
		Name: "wait",
		Params: []entity.ParamSpec{
			{Name: "seconds", Type: entity.ParamTypeInt, Required: true},
		},
		Handler: func(_ context.Context, _ output.BrowserPort, _ []string) entity.ActionResult {
			return entity.Extracted("ok")
		},
	})

	res := reg.Invoke(context.Background(), "wait", []string{"soon"}, nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "must be an integer")
}

func TestActionSignature(t *testing.T) {
	a := Action{
		Name: "open_tab",
		Params: []entity.ParamSpec{
			{Name: "url"},
		},
	}
	assert.Equal(t, "open_tab(url?)", a.Signature())

	b := Action{
		Name: "type",
		Params: []entity.ParamSpec{
			{Name: "selector", Required: true},
			{Name: "text", Required: true},
		},
	}
	assert.Equal(t, "type(selector, text)", b.Signature())
}
