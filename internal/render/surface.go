package render

import (
	"html/template"
	"sync"
)

// Surface is the set of output regions the pipeline writes into.
type Surface interface {
	SetResults(markup template.HTML)
	SetCount(text string)
	SetLastUpdated(text string)
}

// Buffer is an in-memory Surface. The zero value is ready to use.
type Buffer struct {
	mu          sync.RWMutex
	results     template.HTML
	count       string
	lastUpdated string
	writes      int
}

// SetResults replaces the card list region.
func (b *Buffer) SetResults(markup template.HTML) {
	b.mu.Lock()
	b.results = markup
	b.writes++
	b.mu.Unlock()
}

// SetCount replaces the result count text.
func (b *Buffer) SetCount(text string) {
	b.mu.Lock()
	b.count = text
	b.mu.Unlock()
}

// SetLastUpdated replaces the freshness text.
func (b *Buffer) SetLastUpdated(text string) {
	b.mu.Lock()
	b.lastUpdated = text
	b.mu.Unlock()
}

// Snapshot is a copy of the regions at one point in time.
type Snapshot struct {
	Results     template.HTML
	Count       string
	LastUpdated string
	// Writes counts how many times the results region was replaced.
	Writes int
}

// Snapshot returns the current contents of every region.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Results:     b.results,
		Count:       b.count,
		LastUpdated: b.lastUpdated,
		Writes:      b.writes,
	}
}
