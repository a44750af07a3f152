package retention

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alpharesearch/gateway/pkg/audit"
)

type fakeStorage struct {
	mu       sync.Mutex
	cutoffs  []time.Time
	keeps    []int
	deleted  int64
	trimmed  int64
	findErr  error
	saveErr  error
	pruneErr error
}

func (f *fakeStorage) Save(context.Context, *audit.Record) error { return f.saveErr }

func (f *fakeStorage) Find(context.Context, audit.Query) ([]*audit.Record, error) {
	return nil, f.findErr
}

func (f *fakeStorage) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, nil
}

func (f *fakeStorage) DeleteExcess(_ context.Context, keep int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keeps = append(f.keeps, keep)
	return f.trimmed, nil
}

func (f *fakeStorage) Close() error { return nil }

func TestPruner_CutoffFromRetentionDays(t *testing.T) {
	storage := &fakeStorage{deleted: 42}
	pruner := NewPruner(storage, &Config{RetentionDays: 30})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 42 {
		t.Errorf("deleted = %d, want 42", deleted)
	}

	if len(storage.cutoffs) != 1 {
		t.Fatalf("expected 1 delete call, got %d", len(storage.cutoffs))
	}
	want := time.Now().UTC().AddDate(0, 0, -30)
	if diff := storage.cutoffs[0].Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("cutoff = %s, want about %s", storage.cutoffs[0], want)
	}
}

func TestPruner_MaxRecordsCap(t *testing.T) {
	storage := &fakeStorage{deleted: 5, trimmed: 7}
	pruner := NewPruner(storage, &Config{RetentionDays: 30, MaxRecords: 1000})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if deleted != 12 {
		t.Errorf("deleted = %d, want 12", deleted)
	}
	if len(storage.keeps) != 1 || storage.keeps[0] != 1000 {
		t.Errorf("trim calls = %v, want [1000]", storage.keeps)
	}
}

func TestPruner_NoCapSkipsTrim(t *testing.T) {
	storage := &fakeStorage{deleted: 3}
	pruner := NewPruner(storage, &Config{RetentionDays: 30})

	if _, err := pruner.Prune(context.Background()); err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if len(storage.keeps) != 0 {
		t.Errorf("unexpected trim calls: %v", storage.keeps)
	}
}

func TestPruner_PropagatesStorageError(t *testing.T) {
	storage := &fakeStorage{pruneErr: errors.New("disk full")}
	pruner := NewPruner(storage, nil)

	if _, err := pruner.Prune(context.Background()); err == nil {
		t.Fatal("expected error from storage")
	}
}

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	pruner := NewPruner(&fakeStorage{}, &Config{RetentionDays: 30, PruneSchedule: ""})
	scheduler := NewScheduler(pruner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	scheduler.Stop()
}

func TestScheduler_RejectsInvalidSchedule(t *testing.T) {
	pruner := NewPruner(&fakeStorage{}, &Config{RetentionDays: 30, PruneSchedule: "not a cron"})
	scheduler := NewScheduler(pruner)

	if err := scheduler.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
