// Package morph is the morphology port of the skill: everything the rest
// of the code needs to know about Russian word forms goes through the
// Analyzer interface, so the concrete analyzer can be swapped without
// touching the matching pipeline.
package morph

// Analyzer reduces surface tokens to comparable base forms and agrees
// message words with counts.
//
// Implementations must be deterministic and side-effect free: the same
// surface token always maps to the same base form.
type Analyzer interface {
	// Normalize returns the base form of a single token.
	Normalize(token string) string

	// AgreeWithNumber inflects word to agree with n
	// (1 подсказка, 2 подсказки, 5 подсказок).
	AgreeWithNumber(word string, n int) string
}
