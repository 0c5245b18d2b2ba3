package ports

import "github.com/adityakaaltatva/ladle-tracking-system/internal/domain"

type Sink interface {
	WriteBatch(records []*domain.TickRecord) error
	Name() string
}
