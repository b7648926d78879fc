/*
Package chat contains the core logic for room-scoped real-time messaging.

This file defines the profanity predicate applied to outgoing text messages
and its production implementation.
*/
package chat

import (
	goaway "github.com/TwiN/go-away"
)

// ProfanityFilter reports whether message text contains disallowed language.
// The coordinator consults it only after confirming the sender's identity,
// so a rejection is always attributed to a known user.
type ProfanityFilter interface {
	IsProfane(text string) bool
}

// goAwayFilter backs the predicate with go-away's default detector.
type goAwayFilter struct {
	detector *goaway.ProfanityDetector
}

// NewProfanityFilter returns the production profanity filter.
func NewProfanityFilter() ProfanityFilter {
	return &goAwayFilter{
		detector: goaway.NewProfanityDetector(),
	}
}

// IsProfane implements ProfanityFilter.
func (f *goAwayFilter) IsProfane(text string) bool {
	return f.detector.IsProfane(text)
}
