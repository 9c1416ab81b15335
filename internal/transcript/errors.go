package transcript

import "errors"

var (
	// ErrUnsupportedURL is returned when no video ID can be resolved
	// from a URL.
	ErrUnsupportedURL = errors.New("transcript: unsupported video URL")

	// ErrNoTranscript is returned when the video exists but no caption
	// track is available in the requested language.
	ErrNoTranscript = errors.New("transcript: no transcript available")
)
