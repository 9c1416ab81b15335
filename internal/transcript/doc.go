// Package transcript fetches caption transcripts for video links found
// during a crawl. It resolves a video ID from the common YouTube URL
// shapes, asks the caption endpoint for a track in the configured
// language, and flattens the WebVTT payload into plain text.
//
// Auto-generated (ASR) tracks are tried before manually authored ones:
// most lecture and talk videos only carry machine captions, so the ASR
// track is the one that usually exists.
package transcript
