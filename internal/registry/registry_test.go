package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var _ Store = (*Memory)(nil)

func TestPutGet(t *testing.T) {
	t.Parallel()
	r := NewMemory()

	r.Put(Entry{JobID: "a", FilePath: "/storage/a.mp4", DisplayName: "clip_subtitled.mp4", Size: 10})

	got, err := r.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FilePath != "/storage/a.mp4" || got.DisplayName != "clip_subtitled.mp4" {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on Put")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestPutKeepsCreatedAt(t *testing.T) {
	t.Parallel()
	r := NewMemory()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r.Put(Entry{JobID: "a", CreatedAt: ts})

	got, _ := r.Get("a")
	if !got.CreatedAt.Equal(ts) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, ts)
	}
}

func TestPutOverwrites(t *testing.T) {
	t.Parallel()
	r := NewMemory()
	r.Put(Entry{JobID: "a", DisplayName: "one.mp4"})
	r.Put(Entry{JobID: "a", DisplayName: "two.mp4"})

	got, _ := r.Get("a")
	if got.DisplayName != "two.mp4" {
		t.Errorf("DisplayName = %q, want two.mp4", got.DisplayName)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()
	r := NewMemory()
	if _, err := r.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()
	r := NewMemory()
	r.Put(Entry{JobID: "a"})
	r.Remove("a")
	r.Remove("never-existed")

	if _, err := r.Get("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removed entry still present: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestTotalSize(t *testing.T) {
	t.Parallel()
	r := NewMemory()
	r.Put(Entry{JobID: "a", Size: 100})
	r.Put(Entry{JobID: "b", Size: 23})
	if got := r.TotalSize(); got != 123 {
		t.Errorf("TotalSize = %d, want 123", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	r := NewMemory()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("job-%d", i)
			r.Put(Entry{JobID: id, DisplayName: id + ".mp4"})
			got, err := r.Get(id)
			if err != nil {
				t.Errorf("Get(%s): %v", id, err)
				return
			}
			if got.DisplayName != id+".mp4" {
				t.Errorf("entry for %s corrupted: %+v", id, got)
			}
			if i%2 == 0 {
				r.Remove(id)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != workers/2 {
		t.Errorf("Len = %d, want %d", r.Len(), workers/2)
	}
}
