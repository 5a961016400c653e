package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/equipctl/equipctl/internal/model"
)

type stubLister struct {
	items []model.Equipment
	err   error
	calls int
}

func (s *stubLister) List(ctx context.Context) ([]model.Equipment, error) {
	s.calls++
	return s.items, s.err
}

func TestRunOnceDeliversItems(t *testing.T) {
	lister := &stubLister{items: []model.Equipment{{Name: "Drill"}}}

	var gotItems []model.Equipment
	var gotErr error
	r := NewRefresher(lister, time.Minute, func(items []model.Equipment, err error) {
		gotItems = items
		gotErr = err
	})

	r.RunOnce(context.Background())

	if gotErr != nil {
		t.Fatalf("unexpected error: %v", gotErr)
	}
	if len(gotItems) != 1 || gotItems[0].Name != "Drill" {
		t.Errorf("unexpected items: %+v", gotItems)
	}
	if lister.calls != 1 {
		t.Errorf("expected 1 list call, got %d", lister.calls)
	}
}

func TestRunOnceDeliversError(t *testing.T) {
	lister := &stubLister{err: errors.New("boom")}

	var gotErr error
	r := NewRefresher(lister, time.Minute, func(items []model.Equipment, err error) {
		gotErr = err
	})

	r.RunOnce(context.Background())

	if gotErr == nil {
		t.Fatal("expected error to be delivered")
	}
}

func TestStartRunsImmediateFetch(t *testing.T) {
	lister := &stubLister{}
	done := make(chan struct{})

	r := NewRefresher(lister, time.Hour, func(items []model.Equipment, err error) {
		close(done)
	})

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("immediate fetch did not run")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	r := NewRefresher(&stubLister{}, time.Hour, nil)

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	r.Stop()
	r.Stop()
}
