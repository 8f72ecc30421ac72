package errors

import (
	"bytes"
	"testing"

	"github.com/sentidash/sentidash/internal/colors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultCLIHandlerWritesToConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	restore := colors.SetOutput(&out, &errOut)
	defer restore()

	h := NewDefaultCLIHandler()
	h.Error("boom")
	h.Warning("careful")
	h.Info("fyi")
	h.Success("done")

	assert.Contains(t, errOut.String(), "Error:")
	assert.Contains(t, errOut.String(), "boom")
	assert.Contains(t, errOut.String(), "careful")
	assert.Contains(t, out.String(), "fyi")
	assert.Contains(t, out.String(), "done")
}
