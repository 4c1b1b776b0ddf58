package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at interval", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressTracker(&buf, 10, 5)
		p.Start()

		p.Increment(4)
		assert.Empty(t, buf.String())

		p.Increment(1)
		assert.Contains(t, buf.String(), "Analyzed: 5/10 (50.0%)")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressTracker(&buf, 3, 1)
		p.Start()
		p.Increment(10)
		assert.Contains(t, buf.String(), "3/3 (100.0%)")
	})

	t.Run("ignored before start", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressTracker(&buf, 3, 1)
		p.Increment(1)
		p.Finish()
		assert.Empty(t, buf.String())
	})

	t.Run("finish ends the line", func(t *testing.T) {
		var buf bytes.Buffer
		p := newProgressTracker(&buf, 2, 100)
		p.Start()
		p.Finish()
		assert.True(t, strings.HasSuffix(buf.String(), "\n"))
		assert.Contains(t, buf.String(), "2/2")
	})
}
