package sheet

import (
	"strconv"
	"time"
)

// Record is one row persisted in the store.
type Record struct {
	ID        int64
	Tab       Tab
	Status    Status
	Fields    map[string]string
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Field returns the named field value, or empty when unset.
func (r *Record) Field(key string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[key]
}

// SetField writes one field value, allocating the bag when needed.
func (r *Record) SetField(key, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[key] = value
}

// IntField parses the named field as an integer, returning 0 when unset or
// malformed.
func (r *Record) IntField(key string) int {
	value, err := strconv.Atoi(r.Field(key))
	if err != nil {
		return 0
	}
	return value
}

// Terminal reports whether the record has no legal forward step left.
func (r *Record) Terminal() bool {
	if r == nil {
		return true
	}
	return len(NextStatuses(r.Tab, r.Status)) == 0
}

// HealthSummary describes aggregate store state for diagnostic output.
type HealthSummary struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	IntegrityCheck   bool
	TotalRecords     int
	Error            string
}
