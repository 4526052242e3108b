package search

import (
	"time"

	"github.com/Bixxler/nextech/internal/story"
)

// Searcher defines the minimal search API used by the HTTP server.
type Searcher interface {
	Search(query string, limit int) ([]story.Story, error)
}

// SnapshotSearcher searches only when the index holds the list fetched at
// fetchedAt, so results and the caller's snapshot always agree.
type SnapshotSearcher interface {
	SearchAt(fetchedAt time.Time, query string, limit int) ([]story.Story, bool, error)
}

// Syncer is implemented by searchers that index a snapshot of stories and
// want to see every newer one.
type Syncer interface {
	Sync(fetchedAt time.Time, stories []story.Story) (bool, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
type DebugStatser interface {
	DocCount() (int, error)
}

var (
	_ Searcher         = (*Index)(nil)
	_ SnapshotSearcher = (*Index)(nil)
	_ Syncer           = (*Index)(nil)
	_ DebugStatser     = (*Index)(nil)
)
