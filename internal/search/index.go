package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/Bixxler/nextech/internal/debuglog"
	"github.com/Bixxler/nextech/internal/story"
)

// DefaultLimit caps results when a caller passes a non-positive limit.
const DefaultLimit = 20

// Index is an in-memory full text index over one list of stories. Sync
// replaces it whenever a newer list arrives.
type Index struct {
	mu      sync.RWMutex
	idx     bleve.Index
	stories []story.Story
	epoch   time.Time
}

// NewIndex returns an empty index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = false
	title.IncludeTermVectors = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("url", url)

	im.DefaultMapping = dm
	return im
}

// Sync indexes stories if fetchedAt is newer than the list currently
// indexed. Older or equal lists are ignored. It reports whether a rebuild
// happened.
func (ix *Index) Sync(fetchedAt time.Time, stories []story.Story) (bool, error) {
	ix.mu.RLock()
	newer := ix.acceptsLocked(fetchedAt)
	ix.mu.RUnlock()
	if !newer {
		return false, nil
	}

	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return false, fmt.Errorf("creating search index: %w", err)
	}

	batch := idx.NewBatch()
	for i, s := range stories {
		if err := batch.Index(docID(i), map[string]any{
			"title": s.Title,
			"url":   s.URL,
		}); err != nil {
			_ = idx.Close()
			return false, fmt.Errorf("indexing story %q: %w", s.Title, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return false, fmt.Errorf("indexing stories: %w", err)
	}

	kept := make([]story.Story, len(stories))
	copy(kept, stories)

	ix.mu.Lock()
	if !ix.acceptsLocked(fetchedAt) {
		// a concurrent Sync stored this list or a newer one first
		ix.mu.Unlock()
		_ = idx.Close()
		return false, nil
	}
	old := ix.idx
	ix.idx, ix.stories, ix.epoch = idx, kept, fetchedAt
	ix.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	debuglog.WithFields(map[string]interface{}{
		"stories":    len(kept),
		"fetched_at": fetchedAt,
	}).Debugf("rebuilt search index")
	return true, nil
}

func (ix *Index) acceptsLocked(fetchedAt time.Time) bool {
	return ix.stories == nil || fetchedAt.After(ix.epoch)
}

// Search returns stories matching query in the indexed list, best match
// first. Queries shorter than two characters match nothing.
func (ix *Index) Search(query string, limit int) ([]story.Story, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.searchLocked(query, limit)
}

// SearchAt is Search restricted to the list fetched at fetchedAt. It reports
// false without searching when the index holds a different list.
func (ix *Index) SearchAt(fetchedAt time.Time, query string, limit int) ([]story.Story, bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.stories == nil || !ix.epoch.Equal(fetchedAt) {
		return nil, false, nil
	}
	res, err := ix.searchLocked(query, limit)
	return res, err == nil, err
}

func (ix *Index) searchLocked(query string, limit int) ([]story.Story, error) {
	if len([]rune(strings.TrimSpace(query))) < 2 {
		return []story.Story{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qu := bleve.NewMatchQuery(tok)
		qu.SetField("url")
		qu.SetBoost(0.5)
		qs = append(qs, qu)
		qup := bleve.NewPrefixQuery(tok)
		qup.SetField("url")
		qup.SetBoost(0.3)
		qs = append(qs, qup)
	}
	if len(qs) == 0 {
		return []story.Story{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}

	out := make([]story.Story, 0, len(res.Hits))
	for _, h := range res.Hits {
		i, err := strconv.Atoi(strings.TrimPrefix(h.ID, "story:"))
		if err != nil || i < 0 || i >= len(ix.stories) {
			continue
		}
		out = append(out, ix.stories[i])
	}
	return out, nil
}

// DocCount reports the number of indexed stories.
func (ix *Index) DocCount() (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n, err := ix.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close releases the underlying index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.idx.Close()
}

func docID(i int) string { return "story:" + strconv.Itoa(i) }

// tokenize lower-cases text and splits it on anything that is not a letter
// or digit, dropping single characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if len([]rune(current.String())) > 1 {
		terms = append(terms, current.String())
	}

	return terms
}
