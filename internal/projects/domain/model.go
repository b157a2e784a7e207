package domain

import (
	"sort"
	"time"
)

// Project is a user-authored record persisted remotely and mirrored in the local cache.
// Data is opaque to the sync layer; Type names the widget schema it follows.
type Project struct {
	ID          string         `json:"id" firestore:"id"`
	Title       string         `json:"title" firestore:"title"`
	Description string         `json:"description" firestore:"description"`
	Type        string         `json:"type" firestore:"type"`
	Data        map[string]any `json:"data,omitempty" firestore:"data"`
	CreatedAt   time.Time      `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" firestore:"updatedAt"`
}

// Stamp returns a copy of p with UpdatedAt set to now and CreatedAt set to now if it was
// never set. UpdatedAt never precedes CreatedAt.
func (p Project) Stamp(now time.Time) Project {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.UpdatedAt.Before(p.CreatedAt) {
		p.UpdatedAt = p.CreatedAt
	}
	return p
}

// PersistenceMode reports which path the most recent operation resolved through.
type PersistenceMode string

const (
	ModeRemote PersistenceMode = "remote"
	ModeLocal  PersistenceMode = "local"
)

// SortByUpdatedDesc orders projects newest first. Ties fall back to ID for a stable order.
func SortByUpdatedDesc(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].UpdatedAt.Equal(projects[j].UpdatedAt) {
			return projects[i].ID < projects[j].ID
		}
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
}

// IDs returns the set of ids in projects.
func IDs(projects []Project) map[string]struct{} {
	out := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		out[p.ID] = struct{}{}
	}
	return out
}
