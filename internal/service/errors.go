package service

import "errors"

// Error taxonomy for the matching engine. Callers pick retry vs. degrade
// vs. hard-fail; the engine itself never retries.
var (
	// ErrCatalogUnavailable means the dictionary could not be read.
	// Fatal for candidate generation: "no match" and "system degraded"
	// must stay distinguishable on the decision screen.
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrLearningDegraded means a learning-store write failed. The
	// operator's decision stands, but it was not learned.
	ErrLearningDegraded = errors.New("learning store degraded")

	// ErrEmptyName means the raw name normalizes to an empty key, so
	// there is nothing to match or learn against.
	ErrEmptyName = errors.New("name normalizes to an empty key")

	// ErrUnknownDomain means the caller passed a domain other than
	// supplier or bank.
	ErrUnknownDomain = errors.New("unknown matching domain")
)
