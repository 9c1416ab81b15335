package crawler

import (
	"testing"

	"github.com/nao1215/sitesnap/internal/model"
)

// TestExtractLinks tests link extraction and classification.
func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative links against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about">About</a>
			<a href="team.html">Team</a>
			<a href="../index.html">Up</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/docs/intro", "example.com")
		want := []string{
			"https://example.com/about",
			"https://example.com/docs/team.html",
			"https://example.com/index.html",
		}
		if len(links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
		}
		for i, w := range want {
			if links[i].URL != w {
				t.Errorf("link %d: expected %q, got %q", i, w, links[i].URL)
			}
			if links[i].Kind != model.LinkSameDomain {
				t.Errorf("link %d: expected same-domain, got %s", i, links[i].Kind)
			}
		}
	})

	t.Run("classifies links by host", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="https://example.com/internal">Internal</a>
			<a href="https://other.org/page">External</a>
			<a href="https://www.youtube.com/watch?v=abc123defgh">Video</a>
			<a href="https://youtu.be/abc123defgh">Short Video</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		counts := map[model.LinkKind]int{}
		for _, link := range page.ExtractLinks("https://example.com/", "example.com") {
			counts[link.Kind]++
		}

		if counts[model.LinkSameDomain] != 1 {
			t.Errorf("expected 1 same-domain link, got %d", counts[model.LinkSameDomain])
		}
		if counts[model.LinkExternal] != 1 {
			t.Errorf("expected 1 external link, got %d", counts[model.LinkExternal])
		}
		if counts[model.LinkExternalVideo] != 2 {
			t.Errorf("expected 2 external-video links, got %d", counts[model.LinkExternalVideo])
		}
	})

	t.Run("skips non-navigational schemes", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="mailto:admin@example.com">Email</a>
			<a href="javascript:void(0)">JS</a>
			<a href="tel:+1234567890">Phone</a>
			<a href="data:text/plain;base64,aGVsbG8=">Data</a>
			<a href="ftp://example.com/file">FTP</a>
			<a href="/keep">Keep</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(links), links)
		}
		if links[0].URL != "https://example.com/keep" {
			t.Errorf("expected /keep link, got %q", links[0].URL)
		}
	})

	t.Run("deduplicates normalized URLs", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/page">One</a>
			<a href="/page#top">Two</a>
			<a href="https://EXAMPLE.com/page/">Three</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 1 {
			t.Fatalf("expected 1 deduplicated link, got %d: %v", len(links), links)
		}
		if links[0].URL != "https://example.com/page" {
			t.Errorf("expected normalized /page, got %q", links[0].URL)
		}
	})

	t.Run("honors base href", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><base href="https://cdn.example.net/assets/"></head><body>
			<a href="style/main.html">Styled</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}
		if links[0].URL != "https://cdn.example.net/assets/style/main.html" {
			t.Errorf("expected base-resolved URL, got %q", links[0].URL)
		}
		if links[0].Kind != model.LinkExternal {
			t.Errorf("expected external classification, got %s", links[0].Kind)
		}
	})

	t.Run("relative base href resolves against the page URL", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><base href="sub/"></head><body>
			<a href="page.html">Page</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/docs/", "example.com")
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d", len(links))
		}
		if links[0].URL != "https://example.com/docs/sub/page.html" {
			t.Errorf("expected relative-base resolution, got %q", links[0].URL)
		}
	})

	t.Run("collects iframe and frame sources", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<iframe src="https://www.youtube.com/embed/abc123defgh"></iframe>
			<frame src="/legacy">
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 2 {
			t.Fatalf("expected 2 links, got %d: %v", len(links), links)
		}

		var videos int
		for _, link := range links {
			if link.Kind == model.LinkExternalVideo {
				videos++
			}
		}
		if videos != 1 {
			t.Errorf("expected 1 embedded video link, got %d", videos)
		}
	})

	t.Run("img sources never reach the result", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<img src="/images/logo.png">
			<img src="https://other.org/pic.jpg">
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 0 {
			t.Errorf("expected 0 links from images, got %d: %v", len(links), links)
		}
	})

	t.Run("output is sorted", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/zebra">Z</a>
			<a href="/alpha">A</a>
			<a href="/middle">M</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		for i := 1; i < len(links); i++ {
			if links[i-1].URL > links[i].URL {
				t.Errorf("links not sorted: %q before %q", links[i-1].URL, links[i].URL)
			}
		}
	})

	t.Run("empty and whitespace hrefs are dropped", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="">Empty</a>
			<a href="   ">Spaces</a>
			<a href="  /trimmed  ">Trimmed</a>
		</body></html>`

		page, err := ParsePage([]byte(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		links := page.ExtractLinks("https://example.com/", "example.com")
		if len(links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(links), links)
		}
		if links[0].URL != "https://example.com/trimmed" {
			t.Errorf("expected trimmed href to survive, got %q", links[0].URL)
		}
	})
}

// TestIsVideoHost tests video host detection.
func TestIsVideoHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		host string
		want bool
	}{
		{"bare youtube", "youtube.com", true},
		{"www youtube", "www.youtube.com", true},
		{"mobile youtube", "m.youtube.com", true},
		{"short link host", "youtu.be", true},
		{"nocookie embed host", "www.youtube-nocookie.com", true},
		{"vimeo", "vimeo.com", true},
		{"plain site", "example.com", false},
		{"lookalike suffix", "notyoutube.com", false},
		{"lookalike prefix", "youtube.com.evil.org", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isVideoHost(tt.host); got != tt.want {
				t.Errorf("isVideoHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}
