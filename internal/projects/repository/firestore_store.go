package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GoSim-25-26J-441/projectsync/internal/projects/domain"
)

// FirestoreStore keeps one document per project, keyed by project id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) docs() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	snap, err := s.docs().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Project{}, false, nil
	}
	if err != nil {
		return domain.Project{}, false, firestoreErr("get", err)
	}

	var p domain.Project
	if err := snap.DataTo(&p); err != nil {
		return domain.Project{}, false, firestoreErr("decode", err)
	}
	if p.ID == "" {
		p.ID = snap.Ref.ID
	}
	return p, true, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]domain.Project, error) {
	iter := s.docs().Documents(ctx)
	defer iter.Stop()

	out := make([]domain.Project, 0, 16)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, firestoreErr("list", err)
		}

		var p domain.Project
		if err := snap.DataTo(&p); err != nil {
			return nil, firestoreErr("decode", err)
		}
		if p.ID == "" {
			p.ID = snap.Ref.ID
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *FirestoreStore) Put(ctx context.Context, id string, p domain.Project) error {
	p.ID = id
	if _, err := s.docs().Doc(id).Set(ctx, p); err != nil {
		return firestoreErr("put", err)
	}
	return nil
}

// Delete succeeds when the document does not exist.
func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.docs().Doc(id).Delete(ctx); err != nil {
		return firestoreErr("delete", err)
	}
	return nil
}

func firestoreErr(op string, err error) error {
	return fmt.Errorf("%w: firestore %s: %w", domain.ErrRemoteUnavailable, op, err)
}
