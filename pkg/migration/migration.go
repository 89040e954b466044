// Package migration runs and tracks schema migrations.
//
// Migrations register themselves from init() in database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_create_products_table", &CreateProductsTable{})
//	}
//
// and are applied from the CLI:
//
//	inventory migrate             // run all pending
//	inventory migrate:rollback    // roll back the last batch
//	inventory migrate:status      // list every migration and its batch
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Entry pairs a timestamp-prefixed name with its Migration.
type Entry struct {
	Name      string
	Migration Migration
}

// record is a row in the tracking table.
type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "inventory_migrations" }

var (
	regMu    sync.Mutex
	registry []Entry
)

// Register adds m to the global registry. Names sort lexicographically,
// so prefix them with a timestamp.
func Register(name string, m Migration) {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, Entry{Name: name, Migration: m})
}

// Registered returns a sorted copy of the global registry.
func Registered() []Entry {
	regMu.Lock()
	out := append([]Entry(nil), registry...)
	regMu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ErrNotRegistered is returned when rolling back a migration whose code is gone.
var ErrNotRegistered = errors.New("migration not registered")

// Runner executes and tracks migrations against one database.
type Runner struct {
	db         *gorm.DB
	out        io.Writer
	migrations []Entry
}

// New creates a Runner over the global registry that reports to stdout.
func New(db *gorm.DB) *Runner {
	return NewWith(db, os.Stdout, Registered())
}

// NewWith creates a Runner over an explicit migration list.
func NewWith(db *gorm.DB, out io.Writer, migrations []Entry) *Runner {
	if out == nil {
		out = io.Discard
	}
	sorted := append([]Entry(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Runner{db: db, out: out, migrations: sorted}
}

func (r *Runner) ensureTable(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&record{}); err != nil {
		return fmt.Errorf("migration: ensure table: %w", err)
	}
	return nil
}

func (r *Runner) ran(ctx context.Context) (map[string]record, error) {
	var rows []record
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	m := make(map[string]record, len(rows))
	for _, rec := range rows {
		m[rec.Name] = rec
	}
	return m, nil
}

// Pending returns the migrations that have not been applied yet.
func (r *Runner) Pending(ctx context.Context) ([]Entry, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration: fetch applied: %w", err)
	}
	var pending []Entry
	for _, e := range r.migrations {
		if _, ok := done[e.Name]; !ok {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// Run applies every pending migration as a single batch and returns how
// many ran.
func (r *Runner) Run(ctx context.Context) (int, error) {
	pending, err := r.Pending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return 0, nil
	}

	batch, err := r.lastBatch(ctx)
	if err != nil {
		return 0, err
	}
	batch++

	db := r.db.WithContext(ctx)
	for _, e := range pending {
		logger.Info("migration: running", "name", e.Name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", e.Name)

		if err := e.Migration.Up(db); err != nil {
			return 0, fmt.Errorf("migration: %s up: %w", e.Name, err)
		}
		if err := db.Create(&record{Name: e.Name, Batch: batch}).Error; err != nil {
			return 0, fmt.Errorf("migration: record %s: %w", e.Name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", e.Name)
	}

	logger.Info("migration: done", "ran", len(pending), "batch", batch)
	return len(pending), nil
}

// Rollback reverses the most recent batch, newest first, and returns how
// many were rolled back.
func (r *Runner) Rollback(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}
	batch, err := r.lastBatch(ctx)
	if err != nil {
		return 0, err
	}
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	db := r.db.WithContext(ctx)
	var rows []record
	if err := db.Where("batch = ?", batch).Order("id desc").Find(&rows).Error; err != nil {
		return 0, err
	}

	byName := make(map[string]Migration, len(r.migrations))
	for _, e := range r.migrations {
		byName[e.Name] = e.Migration
	}

	for _, rec := range rows {
		m, ok := byName[rec.Name]
		if !ok {
			return 0, fmt.Errorf("migration: rollback %s: %w", rec.Name, ErrNotRegistered)
		}

		logger.Info("migration: rolling back", "name", rec.Name)
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)

		if err := m.Down(db); err != nil {
			return 0, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := db.Delete(&record{}, rec.ID).Error; err != nil {
			return 0, err
		}
		fmt.Fprintf(r.out, "  ✅ Rolled back:  %s\n", rec.Name)
	}
	return len(rows), nil
}

// Status prints every known migration with its state and batch.
func (r *Runner) Status(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	done, err := r.ran(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.out, "%-60s  %-8s  %s\n", "Migration", "Status", "Batch")
	fmt.Fprintln(r.out, strings.Repeat("-", 80))
	for _, e := range r.migrations {
		if rec, ok := done[e.Name]; ok {
			fmt.Fprintf(r.out, "%-60s  %-8s  %d\n", e.Name, "Ran", rec.Batch)
		} else {
			fmt.Fprintf(r.out, "%-60s  %-8s  -\n", e.Name, "Pending")
		}
	}
	return nil
}

func (r *Runner) lastBatch(ctx context.Context) (int, error) {
	var row struct{ Max int }
	err := r.db.WithContext(ctx).Model(&record{}).Select("COALESCE(MAX(batch), 0) AS max").Scan(&row).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return row.Max, nil
}
