package llm

import (
	"bytes"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `["a"]`, `["a"]`},
		{"json fence", "```json\n[\"a\"]\n```", `["a"]`},
		{"bare fence", "```\n[\"a\"]\n```", `["a"]`},
		{"surrounding space", "  \n```json[\"a\"]```  ", `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestFirstBracketedArray(t *testing.T) {
	assert.Equal(t, `["Step A"]`, FirstBracketedArray(`Sure! Here's your list: ["Step A"] enjoy!`))
	assert.Equal(t, "[1,\n2]", FirstBracketedArray("x [1,\n2] y"))
	assert.Equal(t, "", FirstBracketedArray("I cannot help with that"))
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 20*time.Second, Config{}.Timeout())
	assert.Equal(t, 1500*time.Millisecond, Config{TimeoutMs: 1500}.Timeout())
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel, Formatter: log.LogfmtFormatter})
	obs := NewLogObserver(logger)

	obs.OnCallComplete(LLMCallEvent{Task: TaskBreakdown, Provider: ProviderGemini, Model: "m", LatencyMs: 12, Success: true})
	obs.OnCallComplete(LLMCallEvent{Task: TaskBreakdown, Provider: ProviderGemini, Model: "m", ErrorCode: "TIMEOUT"})

	out := buf.String()
	assert.Contains(t, out, "task=breakdown")
	assert.Contains(t, out, "latency_ms=12")
	assert.Contains(t, out, "error_code=TIMEOUT")
}
