package database

import (
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

const startKey = "metrics:start"

// instrument times every statement GORM executes and feeds
// metrics.DBQueryDuration, labelled by operation.
func instrument(db *gorm.DB) error {
	cb := db.Callback()

	hooks := []struct {
		op     string
		before func(name string, fn func(*gorm.DB)) error
		after  func(name string, fn func(*gorm.DB)) error
	}{
		{"insert", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"select", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"select", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for i, h := range hooks {
		suffix := h.op + "_" + string(rune('a'+i))
		if err := h.before("metrics:before_"+suffix, startTimer); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+suffix, observe(h.op)); err != nil {
			return err
		}
	}
	return nil
}

func startTimer(tx *gorm.DB) {
	tx.InstanceSet(startKey, time.Now())
}

func observe(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(startKey)
		if !ok {
			return
		}
		if start, ok := v.(time.Time); ok {
			metrics.ObserveDBQuery(op, start)
		}
	}
}
