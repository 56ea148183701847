package domain

import (
	"sort"
	"time"
)

// Hyperlink is the unit of synchronization: a link saved for later reading.
//
// The same struct travels through every layer (local stores, remote
// transport, repository). Dirty and Deleted are local bookkeeping only and
// are stripped before a record is sent upstream (see RemoteView).
type Hyperlink struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated on the device at creation time so that
	// creating a link works offline. Never changes afterwards.
	ID string `json:"id"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL must start with http:// or https:// (see ValidateURL).
	URL string `json:"url"`

	// Title is an optional display label.
	Title string `json:"title,omitempty"`

	// Visited is set once the user opens the link.
	Visited bool `json:"visited"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	CreatedOn time.Time `json:"createdOn"`

	// UpdatedOn is refreshed on every local mutation and may be
	// normalized by the remote store on push.
	UpdatedOn time.Time `json:"updatedOn"`

	// Owner is the account this record belongs to.
	// Empty means unassigned (local-only).
	Owner string `json:"owner"`

	// ─────────────────────────────
	// Sync bookkeeping
	// ─────────────────────────────

	// Dirty is true while the local copy has mutations that the
	// remote store has not confirmed yet.
	Dirty bool `json:"dirty"`

	// Deleted marks a tombstone: the user deleted the record locally
	// and the deletion has not been confirmed upstream yet.
	Deleted bool `json:"deleted"`
}

// DisplayTitle returns Title, falling back to URL.
func (h Hyperlink) DisplayTitle() string {
	if h.Title != "" {
		return h.Title
	}
	return h.URL
}

// Visible reports whether the record may be shown to the user.
func (h Hyperlink) Visible() bool {
	return !h.Deleted
}

// RemoteView returns the copy sent to the remote store.
func (h Hyperlink) RemoteView() Hyperlink {
	h.Dirty = false
	h.Deleted = false
	return h
}

// Touch bumps UpdatedOn and marks the record dirty.
func (h *Hyperlink) Touch(now time.Time) {
	h.UpdatedOn = now.UTC()
	h.Dirty = true
}

// MarkDeleted turns the record into a tombstone awaiting sync.
func (h *Hyperlink) MarkDeleted(now time.Time) {
	h.Deleted = true
	h.Touch(now)
}

// NewHyperlink is the user input for creating a record.
type NewHyperlink struct {
	URL   string
	Title string
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	ID      string
	URL     *string
	Title   *string
	Visited *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.URL == nil && p.Title == nil && p.Visited == nil
}

// Apply merges the patch onto h. The caller validates the result.
func (p Patch) Apply(h *Hyperlink) {
	if p.URL != nil {
		h.URL = *p.URL
	}
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Visited != nil {
		h.Visited = *p.Visited
	}
}

// VisibleList derives the UI list from the local records:
// tombstones dropped, most recently created first.
func VisibleList(records map[string]Hyperlink) []Hyperlink {
	out := make([]Hyperlink, 0, len(records))
	for _, h := range records {
		if h.Visible() {
			out = append(out, h)
		}
	}
	SortNewestFirst(out)
	return out
}

// SortNewestFirst orders by CreatedOn descending, ID as tie-break
// so the order is stable across devices.
func SortNewestFirst(list []Hyperlink) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedOn.Equal(list[j].CreatedOn) {
			return list[i].CreatedOn.After(list[j].CreatedOn)
		}
		return list[i].ID > list[j].ID
	})
}
