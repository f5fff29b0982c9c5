package recall

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseTranscript normalizes a downloaded transcript payload into
// newline-delimited "Speaker: text" blocks. Two provider shapes are
// understood: a list of per-participant caption segments, and an object
// with a flat "segments" list of speaker/text pairs.
func ParseTranscript(data []byte) (string, error) {
	parsed := gjson.ParseBytes(data)

	switch {
	case parsed.IsArray():
		return parseCaptionSegments(parsed.Array()), nil
	case parsed.IsObject() && parsed.Get("segments").Exists():
		return parseSpeakerSegments(parsed.Get("segments").Array()), nil
	default:
		return "", fmt.Errorf("unknown transcript format")
	}
}

// parseCaptionSegments handles the meeting-captions shape:
//
//	[{"participant": {"name": ...}, "words": [{"text": ...}, ...]}, ...]
func parseCaptionSegments(segments []gjson.Result) string {
	var b strings.Builder

	for _, segment := range segments {
		speaker := segment.Get("participant.name").String()
		if speaker == "" {
			speaker = "Unknown Speaker"
		}

		words := segment.Get("words").Array()
		if len(words) == 0 {
			continue
		}

		parts := make([]string, 0, len(words))
		for _, word := range words {
			parts = append(parts, word.Get("text").String())
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(text)
	}

	return strings.TrimSpace(b.String())
}

// parseSpeakerSegments handles the AI-transcript shape:
//
//	{"segments": [{"speaker": ..., "text": ...}, ...]}
//
// Consecutive segments from the same speaker merge into one block.
func parseSpeakerSegments(segments []gjson.Result) string {
	var b strings.Builder
	currentSpeaker := ""
	started := false

	for _, segment := range segments {
		speaker := segment.Get("speaker").String()
		if speaker == "" {
			speaker = "Unknown"
		}
		text := strings.TrimSpace(segment.Get("text").String())
		if text == "" {
			continue
		}

		if speaker != currentSpeaker || !started {
			if started {
				b.WriteString("\n\n")
			}
			b.WriteString(speaker)
			b.WriteString(": ")
			currentSpeaker = speaker
			started = true
		} else {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}

	return strings.TrimSpace(b.String())
}
