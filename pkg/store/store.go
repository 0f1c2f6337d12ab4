package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/harrisonrobin/todosync/pkg/model"
)

// taskRow is the persisted shape of a task. Timestamps are millisecond epochs.
type taskRow struct {
	UID       string `gorm:"column:uid;primaryKey"`
	Text      string `gorm:"column:text;not null"`
	Priority  string `gorm:"column:priority;not null"`
	Done      bool   `gorm:"column:done;not null"`
	Color     int64  `gorm:"column:color;not null"`
	Deadline  *int64 `gorm:"column:deadline"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
	UpdatedAt int64  `gorm:"column:updated_at;not null;index"`
	Synced    bool   `gorm:"column:synced;not null;index"`
}

func (taskRow) TableName() string { return "todo_items" }

// Store is the durable local item store, backed by SQLite.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the task database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open task database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&taskRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate task database: %w", err)
	}
	return &Store{db: db}, nil
}

// All returns every task, most recently updated first.
func (s *Store) All(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksFromRows(rows), nil
}

// GetByID returns the task with the given id, or model.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (model.Task, error) {
	var row taskRow
	err := s.db.WithContext(ctx).Where("uid = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Task{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Task{}, err
	}
	return taskFromRow(row), nil
}

// Upsert inserts the task or replaces the existing row with the same id.
func (s *Store) Upsert(ctx context.Context, t model.Task) error {
	row := rowFromTask(t)
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

// Delete removes the task with the given id. Deleting an absent id is not an
// error.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&taskRow{}, "uid = ?", id).Error
}

// Unsynced returns every task whose latest state has not been confirmed
// persisted remotely.
func (s *Store) Unsynced(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	if err := s.db.WithContext(ctx).Where("synced = ?", false).Find(&rows).Error; err != nil {
		return nil, err
	}
	return tasksFromRows(rows), nil
}

// MarkSynced flags the task as confirmed persisted remotely.
func (s *Store) MarkSynced(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&taskRow{}).
		Where("uid = ?", id).
		Update("synced", true).Error
}

func rowFromTask(t model.Task) taskRow {
	row := taskRow{
		UID:       t.ID,
		Text:      t.Text,
		Priority:  t.Priority.String(),
		Done:      t.Done,
		Color:     t.Color,
		CreatedAt: t.CreatedAt.UnixMilli(),
		UpdatedAt: t.UpdatedAt.UnixMilli(),
		Synced:    t.Synced,
	}
	if t.Deadline != nil {
		ms := t.Deadline.UnixMilli()
		row.Deadline = &ms
	}
	return row
}

func taskFromRow(row taskRow) model.Task {
	priority, err := model.ParsePriority(row.Priority)
	if err != nil {
		priority = model.PriorityNormal
	}
	t := model.Task{
		ID:        row.UID,
		Text:      row.Text,
		Priority:  priority,
		Done:      row.Done,
		Color:     row.Color,
		CreatedAt: time.UnixMilli(row.CreatedAt),
		UpdatedAt: time.UnixMilli(row.UpdatedAt),
		Synced:    row.Synced,
	}
	if row.Deadline != nil {
		d := time.UnixMilli(*row.Deadline)
		t.Deadline = &d
	}
	return t
}

func tasksFromRows(rows []taskRow) []model.Task {
	tasks := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, taskFromRow(row))
	}
	return tasks
}
