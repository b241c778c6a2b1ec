package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/quotable/quotes-platform/internal/core/domain"
)

func TestPermissionStoreRoundTrip(t *testing.T) {
	store := NewPermissionStore(testClient(t))
	ctx := context.Background()

	perms := domain.Permissions{domain.PermRead: true, domain.PermWrite: false}
	if err := store.Put(ctx, "subj-1", perms); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "subj-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Has(domain.PermRead) || got.Has(domain.PermWrite) {
		t.Errorf("got = %v", got)
	}
}

func TestPermissionStoreMissingSubject(t *testing.T) {
	store := NewPermissionStore(testClient(t))

	if _, err := store.Get(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestPermissionStoreDelete(t *testing.T) {
	store := NewPermissionStore(testClient(t))
	ctx := context.Background()

	store.Put(ctx, "subj-1", domain.Permissions{domain.PermRead: true})
	if err := store.Delete(ctx, "subj-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "subj-1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err after delete = %v, want ErrUserNotFound", err)
	}
}

func TestPermissionStorePutReplaces(t *testing.T) {
	store := NewPermissionStore(testClient(t))
	ctx := context.Background()

	store.Put(ctx, "subj-1", domain.Permissions{domain.PermRead: true, domain.PermWrite: true})
	store.Put(ctx, "subj-1", domain.Permissions{domain.PermRead: true})

	got, err := store.Get(ctx, "subj-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Has(domain.PermWrite) {
		t.Error("stale grant survived a replace")
	}
}
