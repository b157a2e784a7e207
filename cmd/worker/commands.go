package main

import (
	"context"
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/service"
)

// Syncer is what the worker commands drive: the running api over HTTP, or the
// stores opened in-process with -direct.
type Syncer interface {
	Sync(ctx context.Context) (service.FlushResult, service.Status, error)
	Pending(ctx context.Context) (updates, deletes []string, err error)
}

// LocalSyncer runs the commands against an in-process repository.
type LocalSyncer struct {
	Repo *service.ProjectRepository
}

func (s LocalSyncer) Sync(ctx context.Context) (service.FlushResult, service.Status, error) {
	res := s.Repo.Sync(ctx)
	return res, s.Repo.Status(ctx), nil
}

func (s LocalSyncer) Pending(ctx context.Context) ([]string, []string, error) {
	return s.Repo.Pending(ctx)
}

// RunFlush pushes every pending mutation once and reports what is left.
func RunFlush(ctx context.Context, s Syncer, w io.Writer) error {
	res, st, err := s.Sync(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintln(w, "flush already running, skipped")
	} else {
		fmt.Fprintf(w, "pushed=%d deleted=%d dropped=%d failed=%d\n", res.Pushed, res.Deleted, res.Dropped, res.Failed)
	}
	fmt.Fprintf(w, "remaining updates=%d deletes=%d\n", st.PendingUpdates, st.PendingDeletes)

	if res.Failed > 0 {
		return fmt.Errorf("%d pending mutations could not be pushed", res.Failed)
	}
	return nil
}

// RunPending prints the queued update and delete ids.
func RunPending(ctx context.Context, s Syncer, w io.Writer) error {
	updates, deletes, err := s.Pending(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Pending updates (%d):\n", len(updates))
	for _, id := range updates {
		fmt.Fprintf(w, " - %s\n", id)
	}
	fmt.Fprintf(w, "Pending deletes (%d):\n", len(deletes))
	for _, id := range deletes {
		fmt.Fprintf(w, " - %s\n", id)
	}
	return nil
}
