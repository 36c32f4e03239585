package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, false)
	quiet.Debug("hidden")
	quiet.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "run_id=")
	assert.NotContains(t, out, "time=")

	buf.Reset()
	loud := New(&buf, true)
	loud.Debug("details")
	assert.Contains(t, buf.String(), "details")
	assert.Contains(t, buf.String(), "time=")
}

func TestNew_DistinctRunIDs(t *testing.T) {
	a := New(&bytes.Buffer{}, false).Data["run_id"]
	b := New(&bytes.Buffer{}, false).Data["run_id"]
	assert.NotEqual(t, a, b)
}
