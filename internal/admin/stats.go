// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"fmt"

	"github.com/ucsd-tech/sigi-backend/internal/core"
)

// NewEntityCounter returns the EntityCounts hook used by the stats
// endpoints.
func NewEntityCounter(db core.DBTX) func(ctx context.Context) (*EntityCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM projects WHERE NOT is_deleted) AS projects,
			(SELECT COUNT(*) FROM evaluations WHERE NOT is_deleted) AS evaluations,
			(SELECT COUNT(*) FROM publications WHERE NOT is_deleted) AS publications,
			(SELECT COUNT(*) FROM requests WHERE NOT is_deleted) AS requests,
			(SELECT COUNT(*) FROM notifications WHERE NOT is_deleted) AS notifications`

	return func(ctx context.Context) (*EntityCounts, error) {
		var counts struct {
			Users         int `db:"users"`
			Projects      int `db:"projects"`
			Evaluations   int `db:"evaluations"`
			Publications  int `db:"publications"`
			Requests      int `db:"requests"`
			Notifications int `db:"notifications"`
		}
		if err := db.GetContext(ctx, &counts, query); err != nil {
			return nil, fmt.Errorf("entity counts: %w", err)
		}
		return &EntityCounts{
			Users:         counts.Users,
			Projects:      counts.Projects,
			Evaluations:   counts.Evaluations,
			Publications:  counts.Publications,
			Requests:      counts.Requests,
			Notifications: counts.Notifications,
		}, nil
	}
}
