package store

import (
	"context"
	"time"

	"github.com/harrisonrobin/todosync/pkg/model"
)

// PruneExpired deletes tasks whose deadline has passed and returns the removed
// records. Open tasks without a deadline are never pruned.
func (s *Store) PruneExpired(ctx context.Context, now time.Time) ([]model.Task, error) {
	var rows []taskRow
	cutoff := now.UnixMilli()
	err := s.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline < ?", cutoff).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UID)
	}
	if err := s.db.WithContext(ctx).Delete(&taskRow{}, "uid IN ?", ids).Error; err != nil {
		return nil, err
	}
	return tasksFromRows(rows), nil
}
