package memory

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/savelater/internal/store"
	"github.com/MrSnakeDoc/savelater/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.LocalStore {
		return New()
	})
}

func TestGetAllReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := s.Upsert(ctx, storetest.Sample("a")); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	all, _ := s.GetAll(ctx)
	delete(all, "a")

	if s.Count() != 1 {
		t.Errorf("mutating GetAll() result changed the store, Count() = %d", s.Count())
	}
}
