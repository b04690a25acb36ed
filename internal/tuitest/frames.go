package tuitest

import (
	"regexp"
	"strings"
)

// Frame is one normalized terminal render, split on erase-display sequences.
type Frame struct {
	Index int
	ANSI  string
	Plain string
}

var (
	eraseDisplay = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiSequence  = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscSequence  = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

func parseFrames(raw []byte) []Frame {
	stream := strings.ReplaceAll(string(raw), "\r", "")
	frames := make([]Frame, 0, 8)
	for _, segment := range eraseDisplay.Split(stream, -1) {
		segment = strings.Trim(segment, "\x00")
		segment = strings.TrimPrefix(segment, "\x1b[H")
		if segment == "" {
			continue
		}
		plain := stripControl(segment)
		if strings.TrimSpace(plain) == "" {
			continue
		}
		frames = append(frames, Frame{Index: len(frames), ANSI: segment, Plain: tidyLines(plain)})
	}
	if len(frames) == 0 && len(stream) > 0 {
		frames = append(frames, Frame{ANSI: stream, Plain: tidyLines(stripControl(stream))})
	}
	return frames
}

// FinalFrame returns the last captured frame; false when nothing rendered.
func (r *Recording) FinalFrame() (Frame, bool) {
	if r == nil || len(r.Frames) == 0 {
		return Frame{}, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// Contains reports whether any frame's plain text contains s.
func (r *Recording) Contains(s string) bool {
	if r == nil {
		return false
	}
	for _, frame := range r.Frames {
		if strings.Contains(frame.Plain, s) {
			return true
		}
	}
	return false
}

func stripControl(s string) string {
	s = oscSequence.ReplaceAllString(s, "")
	s = csiSequence.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\x0f", "")
	return strings.ReplaceAll(s, "\x0e", "")
}

func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
