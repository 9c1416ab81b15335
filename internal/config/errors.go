package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeed is returned when no seed URL is given.
	ErrNoSeed = errors.New("no seed URL specified: provide one or more seed URLs as arguments")

	// ErrNoBaseDomain is returned when the base domain is empty.
	// Without a base domain no link can be classified as same-domain.
	ErrNoBaseDomain = errors.New("no base domain specified")

	// ErrInvalidMaxPages is returned when the page cap is negative.
	// Use 0 for an uncapped crawl.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A zero or negative timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no crawls run at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrNoOutputFile is returned when the snapshot output path is empty.
	ErrNoOutputFile = errors.New("no output file specified")
)
