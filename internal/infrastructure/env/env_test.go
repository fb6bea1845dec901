package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDefault(t *testing.T) {
	e := &EnvService{}
	t.Setenv("TEST_SET", "value")

	assert.Equal(t, "value", e.GetDefault("TEST_SET", "fallback"))
	assert.Equal(t, "fallback", e.GetDefault("TEST_UNSET", "fallback"))
}

func TestGetBool(t *testing.T) {
	e := &EnvService{}
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_BOOL_BAD", "maybe")

	assert.True(t, e.GetBool("TEST_BOOL", false))
	assert.False(t, e.GetBool("TEST_BOOL_BAD", false))
	assert.True(t, e.GetBool("TEST_BOOL_UNSET", true))
}

func TestGetInt(t *testing.T) {
	e := &EnvService{}
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_INT_BAD", "many")

	assert.Equal(t, 42, e.GetInt("TEST_INT", 7))
	assert.Equal(t, 7, e.GetInt("TEST_INT_BAD", 7))
	assert.Equal(t, 7, e.GetInt("TEST_INT_UNSET", 7))
}

func TestGetFloat(t *testing.T) {
	e := &EnvService{}
	t.Setenv("TEST_FLOAT", "0.7")

	assert.Equal(t, 0.7, e.GetFloat("TEST_FLOAT", 1.0))
	assert.Equal(t, 1.0, e.GetFloat("TEST_FLOAT_UNSET", 1.0))
}

func TestGetDuration(t *testing.T) {
	e := &EnvService{}
	t.Setenv("TEST_DUR", "90s")
	t.Setenv("TEST_DUR_BAD", "soon")

	assert.Equal(t, 90*time.Second, e.GetDuration("TEST_DUR", time.Minute))
	assert.Equal(t, time.Minute, e.GetDuration("TEST_DUR_BAD", time.Minute))
}
