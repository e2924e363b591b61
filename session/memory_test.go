package session

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreMissingChatIsZero(t *testing.T) {
	store := NewMemoryStore()

	s, err := store.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.State != StateIdle {
		t.Fatalf("expected idle state, got %q", s.State)
	}
	if s.Draft.PhotoPath != "" || s.Draft.Description != "" || s.Draft.Lat != nil {
		t.Fatalf("expected empty draft, got %+v", s.Draft)
	}
}

func TestMemoryStorePutGetClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	lat := 47.91
	lon := 106.88
	want := Session{
		State: StateAwaitingLocation,
		Draft: Draft{
			PhotoPath:   "data/42_abc.jpg",
			Description: "broken streetlight",
			Lat:         &lat,
			Lon:         &lon,
		},
	}
	if err := store.Put(ctx, 42, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != want.State || got.Draft.Description != want.Draft.Description {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Draft.Lat == nil || *got.Draft.Lat != lat {
		t.Fatalf("lat lost in round trip: %+v", got.Draft)
	}

	if err := store.Clear(ctx, 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = store.Get(ctx, 42)
	if got.State != StateIdle {
		t.Fatalf("expected idle after clear, got %q", got.State)
	}
}

func TestMemoryStoreChatsAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Put(ctx, 1, Session{State: StateAwaitingPhoto})
	_ = store.Put(ctx, 2, Session{State: StateAwaitingDescription})

	s1, _ := store.Get(ctx, 1)
	s2, _ := store.Get(ctx, 2)
	if s1.State != StateAwaitingPhoto || s2.State != StateAwaitingDescription {
		t.Fatalf("chats interfered: %q %q", s1.State, s2.State)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			_ = store.Put(ctx, chatID, Session{State: StateAwaitingPhoto})
			_, _ = store.Get(ctx, chatID)
			_ = store.Clear(ctx, chatID)
		}(int64(i))
	}
	wg.Wait()
}
