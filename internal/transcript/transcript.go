package transcript

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Caption endpoint defaults. maxTranscriptSize bounds the response body
// so a misbehaving endpoint cannot exhaust memory.
const (
	defaultEndpoint   = "https://www.youtube.com"
	timedTextPath     = "/api/timedtext"
	defaultLanguage   = "en"
	maxTranscriptSize = 2 * 1024 * 1024 // 2MB
)

// isVideoID validates the 11-character YouTube video ID alphabet.
func isVideoID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// VideoID extracts the video ID from a video URL. It understands the
// watch, embed, shorts, legacy /v/, and youtu.be short-link shapes.
// An empty string means the URL carries no resolvable ID.
func VideoID(videoURL string) string {
	u, err := url.Parse(videoURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	path := strings.Trim(u.Path, "/")

	var id string
	switch {
	case host == "youtu.be":
		id = path
	case strings.HasSuffix(host, "youtube.com") || strings.HasSuffix(host, "youtube-nocookie.com"):
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "embed/"):
			id = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "shorts/"):
			id = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "v/"):
			id = strings.TrimPrefix(path, "v/")
		}
	}

	// Extra path segments after the ID are dropped.
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if !isVideoID(id) {
		return ""
	}
	return id
}

// Client fetches caption tracks over HTTP.
type Client struct {
	client   *http.Client
	endpoint string
	language string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the caption endpoint base URL. Used by tests to
// point at a local server.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

// WithLanguage sets the caption language code (default "en").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a transcript client. A nil httpClient uses
// http.DefaultClient.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		client:   httpClient,
		endpoint: defaultEndpoint,
		language: defaultLanguage,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchTranscript returns the flattened transcript text for a video URL.
// The auto-generated track is tried first, then the manually authored
// one. ErrUnsupportedURL means the URL carries no video ID;
// ErrNoTranscript means neither track exists.
func (c *Client) FetchTranscript(ctx context.Context, videoURL string) (string, error) {
	id := VideoID(videoURL)
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, videoURL)
	}

	for _, kind := range []string{"asr", ""} {
		raw, err := c.fetchTrack(ctx, id, kind)
		if err != nil {
			c.logger.Debug("caption track unavailable",
				"video", id,
				"kind", kind,
				"error", err,
			)
			continue
		}
		if text := flattenVTT(raw); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: video %s lang %s", ErrNoTranscript, id, c.language)
}

// fetchTrack requests a single caption track in WebVTT format.
func (c *Client) fetchTrack(ctx context.Context, videoID, kind string) (string, error) {
	q := url.Values{}
	q.Set("v", videoID)
	q.Set("lang", c.language)
	q.Set("fmt", "vtt")
	if kind != "" {
		q.Set("kind", kind)
	}

	reqURL := c.endpoint + timedTextPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTranscriptSize))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// flattenVTT strips WebVTT structure (header, cue identifiers, timing
// lines, NOTE/STYLE blocks, inline tags) and joins the caption text into
// one whitespace-collapsed string. Consecutive duplicate lines, which
// rolling ASR captions produce constantly, are coalesced.
func flattenVTT(raw string) string {
	var out []string
	var last string
	skipBlock := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			skipBlock = false
			continue
		case skipBlock:
			continue
		case strings.HasPrefix(line, "WEBVTT"):
			continue
		case strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") || strings.HasPrefix(line, "REGION"):
			skipBlock = true
			continue
		case strings.Contains(line, "-->"):
			continue
		case isCueIdentifier(line):
			continue
		}

		line = stripTags(line)
		if line == "" || line == last {
			continue
		}
		out = append(out, line)
		last = line
	}

	return strings.Join(strings.Fields(strings.Join(out, " ")), " ")
}

// isCueIdentifier reports whether a line is a bare numeric cue counter,
// the SRT-style sequence number some endpoints emit even in VTT output.
func isCueIdentifier(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripTags removes inline markup like <c>, </c>, and <00:00:01.000>
// timestamps from a caption line.
func stripTags(line string) string {
	if !strings.ContainsRune(line, '<') {
		return line
	}
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
