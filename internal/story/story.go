// Package story holds the Story model and the list operations applied to a
// published result set: validity, title ordering, filtering and paging.
package story

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Story is a single Hacker News item. Only Title and URL are required;
// the remaining fields are kept when upstream sends them.
type Story struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title"`
	URL   string `json:"url"`
	By    string `json:"by,omitempty"`
	Type  string `json:"type,omitempty"`
	Score int    `json:"score,omitempty"`
	Time  int64  `json:"time,omitempty"`
}

// Valid reports whether both title and url are non-empty.
func (s Story) Valid() bool {
	return s.Title != "" && s.URL != ""
}

// SortMode selects the key stories are ordered by.
type SortMode int

const (
	// SortPlain compares lower-cased titles as-is.
	SortPlain SortMode = iota
	// SortLetters drops every non-letter before comparing, so titles
	// starting with quotes or digits sort among the words they contain.
	SortLetters
)

func (m SortMode) String() string {
	switch m {
	case SortLetters:
		return "letters"
	default:
		return "plain"
	}
}

// ParseSortMode maps a config value onto a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return SortPlain, nil
	case "letters":
		return SortLetters, nil
	default:
		return SortPlain, fmt.Errorf("unknown sort mode %q", s)
	}
}

// Key returns the comparison key for title under mode m.
func (m SortMode) Key(title string) string {
	lower := strings.ToLower(title)
	if m != SortLetters {
		return lower
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return -1
	}, lower)
}

// Sort orders stories in place by title key. Equal keys keep their input order.
func Sort(stories []Story, mode SortMode) {
	keys := make([]string, len(stories))
	for i := range stories {
		keys[i] = mode.Key(stories[i].Title)
	}
	sort.Stable(byKey{stories: stories, keys: keys})
}

type byKey struct {
	stories []Story
	keys    []string
}

func (b byKey) Len() int           { return len(b.stories) }
func (b byKey) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byKey) Swap(i, j int) {
	b.stories[i], b.stories[j] = b.stories[j], b.stories[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// Filter returns the stories whose title or url contains term, ignoring
// case. An empty term returns stories unchanged. The input is never modified.
func Filter(stories []Story, term string) []Story {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return stories
	}

	out := make([]Story, 0, len(stories))
	for _, s := range stories {
		if strings.Contains(strings.ToLower(s.Title), term) ||
			strings.Contains(strings.ToLower(s.URL), term) {
			out = append(out, s)
		}
	}
	return out
}
