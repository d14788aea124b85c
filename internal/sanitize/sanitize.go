// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes every HTML element from free text. Content of script and
// style elements is dropped entirely.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses bounds re-sanitizing of entity-encoded markup such as "&lt;script&gt;".
const maxPasses = 3

// Text returns in without markup. Entities are decoded so stored titles hold
// plain text; decoding may surface new tags, so the policy runs again until
// the output is stable.
func (s *Sanitizer) Text(in string) string {
	out := in
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing: keep the entity-encoded form
	return strings.TrimSpace(s.policy.Sanitize(out))
}
