package crawler

import (
	"strings"
	"testing"
)

// TestVisibleText tests visible-text extraction.
func TestVisibleText(t *testing.T) {
	t.Parallel()

	t.Run("collapses whitespace to single spaces", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<h1>Welcome</h1>
			<p>First   paragraph
			spanning lines.</p>
			<p>Second paragraph.</p>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		got := page.VisibleText()
		want := "Welcome First paragraph spanning lines. Second paragraph."
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("removes non-content elements", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<title>Ignored Title</title>
			<style>body { color: red; }</style>
		</head><body>
			<header>Site Header</header>
			<nav>Home About Contact</nav>
			<script>console.log("hi");</script>
			<noscript>Enable JS</noscript>
			<p>Actual content.</p>
			<footer>Copyright 2026</footer>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		got := page.VisibleText()
		if got != "Actual content." {
			t.Errorf("expected only body content, got %q", got)
		}
	})

	t.Run("extraction does not disturb link extraction", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<nav><a href="/nav-link">Nav</a></nav>
			<p><a href="/body-link">Body</a></p>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		// Text extraction removes <nav> on a clone; the nav link must
		// still be extractable afterwards.
		if text := page.VisibleText(); strings.Contains(text, "Nav") {
			t.Errorf("expected nav text removed, got %q", text)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 2 {
			t.Errorf("expected 2 links after text extraction, got %d: %v", len(links), links)
		}
	})

	t.Run("empty body yields empty string", func(t *testing.T) {
		t.Parallel()

		page, err := ParsePage([]byte(`<html><body></body></html>`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if got := page.VisibleText(); got != "" {
			t.Errorf("expected empty text, got %q", got)
		}
	})

	t.Run("normalizes text to NFC", func(t *testing.T) {
		t.Parallel()

		// "é" as 'e' followed by combining acute accent (NFD).
		html := "<html><body><p>café</p></body></html>"

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		got := page.VisibleText()
		if got != "café" {
			t.Errorf("expected NFC-composed text, got %q", got)
		}
	})
}
