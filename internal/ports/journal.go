package ports

import "github.com/adityakaaltatva/ladle-tracking-system/internal/domain"

type JournalEntryID uint64

// Journal is an append-only export trail of tick records. Nothing reads it
// back into the simulator.
type Journal interface {
	Append(r *domain.TickRecord) (JournalEntryID, error)
	Iterate(from JournalEntryID, fn func(id JournalEntryID, r *domain.TickRecord) error) error
	Stats() JournalStats
	Close() error
}

type JournalStats struct {
	LatestAppended JournalEntryID
	SizeBytes      int64
}
