package cup

import "context"

type Repository interface {
	// AggregatePointsBySeason sums the cup points table per user for one
	// season, ordered by points desc then username asc.
	AggregatePointsBySeason(ctx context.Context, seasonID int64) ([]StandingRow, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, record AuditRecord) error
}
