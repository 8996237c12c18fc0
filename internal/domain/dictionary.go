package domain

import (
	"sort"
)

// DictionaryOptions holds the per-dictionary lookup options. PriorityIndex
// presence is the enablement gate: a dictionary without one is never
// searched, whatever the other options say.
type DictionaryOptions struct {
	PriorityIndex          *int
	DisplayAlias           *string
	AllowSecondarySearches bool
	PartsOfSpeechFilter    bool
	UseDeinflections       bool
}

// Enabled reports whether the dictionary participates in searches.
func (o DictionaryOptions) Enabled() bool { return o.PriorityIndex != nil }

// DictionaryConfig maps dictionary titles to their options. The value is
// immutable by convention: it is built once (from configuration or a
// request override) and passed into each query call.
type DictionaryConfig map[string]DictionaryOptions

// IsEnabled reports whether the named dictionary is present and enabled.
func (c DictionaryConfig) IsEnabled(title string) bool {
	opts, ok := c[title]
	return ok && opts.Enabled()
}

// EnabledTitles returns the titles of all enabled dictionaries, sorted for
// deterministic query construction. Empty when none are enabled.
func (c DictionaryConfig) EnabledTitles() []string {
	titles := make([]string, 0, len(c))
	for title, opts := range c {
		if opts.Enabled() {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)
	return titles
}

// Alias returns the display alias for a dictionary, falling back to the
// title itself.
func (c DictionaryConfig) Alias(title string) string {
	if opts, ok := c[title]; ok && opts.DisplayAlias != nil && *opts.DisplayAlias != "" {
		return *opts.DisplayAlias
	}
	return title
}
