package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemPrompt(t *testing.T) {
	with := SystemPrompt(true)
	without := SystemPrompt(false)

	assert.Contains(t, with, "43–45 = Initial diabetes signs.")
	assert.NotContains(t, without, "Initial diabetes signs")

	for _, p := range []string{with, without} {
		assert.Contains(t, p, StripPrefix+"Pad <n> indicates <condition>")
		assert.Contains(t, p, ReportPrefix+"<condition>")
	}
	assert.True(t, strings.HasPrefix(with, without))
}
