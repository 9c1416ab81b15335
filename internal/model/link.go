package model

// LinkKind classifies an outbound link relative to the crawl's base host.
type LinkKind int

const (
	// LinkSameDomain is a link whose normalized host equals the base host.
	// Only these links feed back into the crawl frontier.
	LinkSameDomain LinkKind = iota

	// LinkExternal is an ordinary off-domain link. The baseline crawl
	// records nothing for these beyond classification.
	LinkExternal

	// LinkExternalVideo is an off-domain link to a known video-hosting
	// site. These are routed to the transcript enricher.
	LinkExternalVideo
)

// String returns a human-readable name for the link kind.
func (k LinkKind) String() string {
	switch k {
	case LinkSameDomain:
		return "same-domain"
	case LinkExternal:
		return "external"
	case LinkExternalVideo:
		return "external-video"
	default:
		return "unknown"
	}
}

// Link is a normalized outbound URL with its classification.
type Link struct {
	// URL is the canonical form of the link target.
	URL string

	// Kind is the classification relative to the base host.
	Kind LinkKind
}
