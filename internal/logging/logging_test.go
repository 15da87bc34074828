package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRespectsVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug("hidden")
	l.Info("shown", "fn", "hello")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "fn=hello")

	buf.Reset()
	New(&buf, true).Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	var buf bytes.Buffer
	l := New(&buf, false)
	assert.Same(t, l, OrDiscard(l))
}
