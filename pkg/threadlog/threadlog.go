// Package threadlog models an append-only conversation transcript and the
// pagination of its reader-visible slice. Tool turns live in the log but are
// never surfaced, so a page of N visible messages may span more than N raw
// entries.
package threadlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is one raw entry of a thread transcript. Seq is assigned at append
// time and is strictly increasing within a thread.
type Message struct {
	Id         uuid.UUID
	Seq        int64
	Role       string
	Content    string
	AuthorName string
	CreatedAt  time.Time
}

// Page is one slice of the visible transcript. ContinueCursor resumes
// immediately after the last raw entry this page consumed, so concatenating
// pages never skips or repeats a visible message.
type Page struct {
	Items          []Message
	ContinueCursor string
	IsDone         bool
}

// Lister reads raw transcript entries in log order.
type Lister interface {
	// ListAfter returns up to limit entries with Seq > afterSeq, ascending.
	ListAfter(ctx context.Context, afterSeq int64, limit int) ([]Message, error)
}

// Visible reports whether a role is surfaced to transcript readers.
func Visible(role string) bool {
	switch role {
	case "user", "assistant", "operator":
		return true
	}
	return false
}
