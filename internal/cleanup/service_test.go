package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pokernight-labs/pokernight-backend/internal/pkg/ledger"
)

type fakeStore struct {
	ledger.Store

	cutoff  time.Time
	deleted int64
	err     error
}

func (s *fakeStore) DeleteStalePendingPlayers(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestSweepUsesConfiguredGraceWindow(t *testing.T) {
	store := &fakeStore{deleted: 3}
	service := cleanupService{store: store, grace: 30 * time.Minute}

	deleted, err := service.sweepStalePending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d", deleted)
	}

	age := time.Since(store.cutoff)
	if age < 29*time.Minute || age > 31*time.Minute {
		t.Fatalf("cutoff age = %v", age)
	}
}

func TestSweepDefaultsGraceWindow(t *testing.T) {
	store := &fakeStore{}
	service := cleanupService{store: store}

	if _, err := service.sweepStalePending(context.Background()); err != nil {
		t.Fatal(err)
	}

	age := time.Since(store.cutoff)
	if age < 9*time.Minute || age > 11*time.Minute {
		t.Fatalf("cutoff age = %v", age)
	}
}

func TestSweepPropagatesStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	service := cleanupService{store: store}

	if _, err := service.sweepStalePending(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
