package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionInvocationRender(t *testing.T) {
	inv := ActionInvocation{Name: "type", Args: []string{"#pw", "secret"}}
	assert.Equal(t, "type(#pw, secret)", inv.Render())

	bare := ActionInvocation{Name: "screenshot"}
	assert.Equal(t, "screenshot()", bare.Render())
}

func TestActionResultPayload(t *testing.T) {
	ok := Extracted("found it")
	assert.True(t, ok.Success)
	assert.Equal(t, "found it", ok.Payload())

	bad := Failed("broke")
	assert.False(t, bad.Success)
	assert.Equal(t, "broke", bad.Payload())
}

func TestScreenshotMIMEType(t *testing.T) {
	assert.Equal(t, "image/jpeg", (&Screenshot{Format: "jpeg"}).MIMEType())
	assert.Equal(t, "image/jpeg", (&Screenshot{Format: "jpg"}).MIMEType())
	assert.Equal(t, "image/png", (&Screenshot{Format: "png"}).MIMEType())
	assert.Equal(t, "image/png", (&Screenshot{}).MIMEType())
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.True(t, TaskStatusFinished.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
	assert.False(t, TaskStatusRunning.Terminal())
	assert.False(t, TaskStatusCreated.Terminal())
}
