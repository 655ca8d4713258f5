// Package changefeed turns row-level change notifications from the documents
// table into a typed event stream with caller-owned subscriptions. A trigger
// on the table emits JSON row images over pg_notify; the feed decodes them
// and fans them out. Delivery is at-least-once and unordered with respect to
// other subscriptions; consumers must treat refresh as idempotent.
package changefeed

import (
	"encoding/json"
	"fmt"
	"time"

	"caseflow/internal/domain/models"
)

// Operation is the row-level change kind.
type Operation string

const (
	OpInsert Operation = "INSERT"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

// Event is one decoded row-level change. Record is the new row image
// (absent for deletes); Old is the previous image (present for updates and
// deletes, trigger permitting).
type Event struct {
	Op     Operation        `json:"op"`
	Table  string           `json:"table"`
	Record *models.Document `json:"record,omitempty"`
	Old    *models.Document `json:"old_record,omitempty"`
	At     time.Time        `json:"at"`
}

// DocumentID returns the id of the changed row regardless of operation.
func (e *Event) DocumentID() string {
	if e.Record != nil {
		return e.Record.ID
	}
	if e.Old != nil {
		return e.Old.ID
	}
	return ""
}

// StoragePath returns the storage path of the changed row, if any.
func (e *Event) StoragePath() string {
	if e.Record != nil && e.Record.StoragePath != nil {
		return *e.Record.StoragePath
	}
	if e.Old != nil && e.Old.StoragePath != nil {
		return *e.Old.StoragePath
	}
	return ""
}

// StatusChanged reports whether the processing-status field changed value in
// an update event.
func (e *Event) StatusChanged() bool {
	if e.Op != OpUpdate || e.Record == nil || e.Old == nil {
		return false
	}
	return e.Record.ProcessingStatus != e.Old.ProcessingStatus
}

// DecodeEvent parses a trigger payload. Unknown operations are an error;
// a payload without any row image is an error.
func DecodeEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode change payload: %w", err)
	}

	switch ev.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return nil, fmt.Errorf("unknown change operation %q", ev.Op)
	}
	if ev.Record == nil && ev.Old == nil {
		return nil, fmt.Errorf("change payload carries no row image")
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	normalizeStatus(ev.Record)
	normalizeStatus(ev.Old)

	return &ev, nil
}

// normalizeStatus folds legacy status spellings in a raw row image into the
// closed enum, so downstream status branches see canonical values only.
func normalizeStatus(doc *models.Document) {
	if doc == nil || doc.ProcessingStatus == "" {
		return
	}
	if status, err := models.ParseProcessingStatus(string(doc.ProcessingStatus)); err == nil {
		doc.ProcessingStatus = status
	}
}

// Filter scopes a subscription. The zero Filter matches every event. Scoped
// and global subscriptions may both fire for the same underlying change;
// that duplication is part of the contract.
type Filter struct {
	DocumentID  string
	StoragePath string
}

// Matches reports whether an event passes the filter.
func (f Filter) Matches(e *Event) bool {
	if f.DocumentID != "" && e.DocumentID() != f.DocumentID {
		return false
	}
	if f.StoragePath != "" && e.StoragePath() != f.StoragePath {
		return false
	}
	return true
}
