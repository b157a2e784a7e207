package repository

import "context"

// PendingQueues tracks ids whose update or deletion has not reached the remote store yet.
// An id is never left in both queues: enqueueing into one clears it from the other.
type PendingQueues struct {
	updates *IDSet
	deletes *IDSet
}

func NewPendingQueues(kv KV, prefix string) *PendingQueues {
	return &PendingQueues{
		updates: NewIDSet(kv, prefix+":pending:update"),
		deletes: NewIDSet(kv, prefix+":pending:delete"),
	}
}

func (q *PendingQueues) EnqueueUpdate(ctx context.Context, id string) error {
	if err := q.updates.Add(ctx, id); err != nil {
		return localErr("enqueue update", err)
	}
	if err := q.deletes.Remove(ctx, id); err != nil {
		return localErr("clear delete", err)
	}
	return nil
}

func (q *PendingQueues) ClearUpdate(ctx context.Context, id string) error {
	if err := q.updates.Remove(ctx, id); err != nil {
		return localErr("clear update", err)
	}
	return nil
}

func (q *PendingQueues) PendingUpdates(ctx context.Context) ([]string, error) {
	ids, err := q.updates.Members(ctx)
	if err != nil {
		return nil, localErr("read pending updates", err)
	}
	return ids, nil
}

func (q *PendingQueues) EnqueueDelete(ctx context.Context, id string) error {
	if err := q.deletes.Add(ctx, id); err != nil {
		return localErr("enqueue delete", err)
	}
	if err := q.updates.Remove(ctx, id); err != nil {
		return localErr("clear update", err)
	}
	return nil
}

func (q *PendingQueues) ClearDelete(ctx context.Context, id string) error {
	if err := q.deletes.Remove(ctx, id); err != nil {
		return localErr("clear delete", err)
	}
	return nil
}

func (q *PendingQueues) PendingDeletes(ctx context.Context) ([]string, error) {
	ids, err := q.deletes.Members(ctx)
	if err != nil {
		return nil, localErr("read pending deletes", err)
	}
	return ids, nil
}
