package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTranscriptCaptionFormat(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name:     "single speaker single word",
			payload:  `[{"participant":{"name":"A"},"words":[{"text":"hi"}]}]`,
			expected: "A: hi",
		},
		{
			name: "multiple speakers",
			payload: `[
				{"participant":{"name":"Alice"},"words":[{"text":"Good"},{"text":"morning"}]},
				{"participant":{"name":"Bob"},"words":[{"text":"Morning"}]}
			]`,
			expected: "Alice: Good morning\n\nBob: Morning",
		},
		{
			name:     "missing participant name",
			payload:  `[{"participant":{},"words":[{"text":"hello"}]}]`,
			expected: "Unknown Speaker: hello",
		},
		{
			name: "empty word list is skipped",
			payload: `[
				{"participant":{"name":"Mute"},"words":[]},
				{"participant":{"name":"A"},"words":[{"text":"hi"}]}
			]`,
			expected: "A: hi",
		},
		{
			name:     "empty payload",
			payload:  `[]`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTranscript([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTranscriptSegmentsFormat(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{
			name:     "single segment",
			payload:  `{"segments":[{"speaker":"A","text":"hi"}]}`,
			expected: "A: hi",
		},
		{
			name: "consecutive segments from one speaker merge",
			payload: `{"segments":[
				{"speaker":"A","text":"Hello"},
				{"speaker":"A","text":"there"},
				{"speaker":"B","text":"Hi"}
			]}`,
			expected: "A: Hello there\n\nB: Hi",
		},
		{
			name: "empty text is skipped",
			payload: `{"segments":[
				{"speaker":"A","text":"  "},
				{"speaker":"B","text":"ok"}
			]}`,
			expected: "B: ok",
		},
		{
			name:     "missing speaker",
			payload:  `{"segments":[{"text":"hello"}]}`,
			expected: "Unknown: hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTranscript([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTranscriptEquivalentContent(t *testing.T) {
	// The two provider shapes must normalize identically for the same
	// underlying conversation.
	captions := `[{"participant":{"name":"A"},"words":[{"text":"hi"}]}]`
	segments := `{"segments":[{"speaker":"A","text":"hi"}]}`

	fromCaptions, err := ParseTranscript([]byte(captions))
	require.NoError(t, err)
	fromSegments, err := ParseTranscript([]byte(segments))
	require.NoError(t, err)

	assert.Equal(t, fromCaptions, fromSegments)
	assert.Equal(t, "A: hi", fromCaptions)
}

func TestParseTranscriptUnknownFormat(t *testing.T) {
	_, err := ParseTranscript([]byte(`{"something":"else"}`))
	assert.Error(t, err)

	_, err = ParseTranscript([]byte(`"just a string"`))
	assert.Error(t, err)
}
