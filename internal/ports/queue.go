package ports

import "github.com/adityakaaltatva/ladle-tracking-system/internal/domain"

type RecordQueue interface {
	Enqueue(r *domain.TickRecord) bool
	DequeueBatch(max int) []*domain.TickRecord
	Len() int
}
