package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionDetectorDefaults(t *testing.T) {
	d := NewCompletionDetector(nil)

	assert.True(t, d.Detect("The task is complete."))
	assert.True(t, d.Detect("TASK COMPLETED successfully"))
	assert.True(t, d.Detect("Everything is Done now"))
	assert.True(t, d.Detect("O objetivo foi concluído com sucesso"))
	assert.True(t, d.Detect("O trabalho foi FINALIZADO"))
	assert.False(t, d.Detect("still working on it"))
	assert.False(t, d.Detect(""))
}

func TestCompletionDetectorCustomVocabulary(t *testing.T) {
	d := NewCompletionDetector([]string{"mission accomplished"})

	assert.True(t, d.Detect("Mission Accomplished!"))
	// Custom vocabulary replaces the defaults entirely.
	assert.False(t, d.Detect("task completed"))
}
