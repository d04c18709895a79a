package session

import (
	"context"
	"testing"
)

type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (kv *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	value, found := kv.values[key]
	return value, found, nil
}

func (kv *fakeKV) Set(_ context.Context, key, value string) error {
	kv.values[key] = value
	return nil
}

func (kv *fakeKV) Delete(_ context.Context, key string) error {
	delete(kv.values, key)
	return nil
}

func TestCurrentWithoutTokenIsSignedOut(t *testing.T) {
	manager := NewManager(newFakeKV())
	_, signedIn, err := manager.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if signedIn {
		t.Fatal("expected signed-out session")
	}
}

func TestSignInRoundTrip(t *testing.T) {
	manager := NewManager(newFakeKV())
	ctx := context.Background()

	identity := Identity{Token: "tok-1", UserID: 7, Name: "Ada", Email: "ada@example.com"}
	if err := manager.SignIn(ctx, identity); err != nil {
		t.Fatalf("sign in: %v", err)
	}

	got, signedIn, err := manager.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !signedIn || got != identity {
		t.Fatalf("current = (%+v, %v)", got, signedIn)
	}
}

func TestSignInRequiresToken(t *testing.T) {
	manager := NewManager(newFakeKV())
	if err := manager.SignIn(context.Background(), Identity{Name: "Ada"}); err == nil {
		t.Fatal("expected error for missing token")
	}
}

func TestSignOutClearsIdentityOnly(t *testing.T) {
	kv := newFakeKV()
	kv.values["cart"] = `[{"id":1}]`
	manager := NewManager(kv)
	ctx := context.Background()

	if err := manager.SignIn(ctx, Identity{Token: "tok-1", UserID: 7}); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := manager.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	if _, signedIn, err := manager.Current(ctx); err != nil || signedIn {
		t.Fatalf("expected signed-out session, signedIn=%v err=%v", signedIn, err)
	}
	if kv.values["cart"] != `[{"id":1}]` {
		t.Fatal("cart should survive sign out")
	}
}

func TestCurrentToleratesCorruptUserID(t *testing.T) {
	kv := newFakeKV()
	kv.values[keyToken] = "tok-1"
	kv.values[keyID] = "not a number"
	manager := NewManager(kv)

	identity, signedIn, err := manager.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !signedIn || identity.UserID != 0 {
		t.Fatalf("current = (%+v, %v)", identity, signedIn)
	}
}
