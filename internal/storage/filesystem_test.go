package storage

import (
	"context"
	"errors"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "users/a/profile.json", want: "users/a/profile.json"},
		{in: "/users/a", want: "users/a"},
		{in: "./a\\b", want: "a/b"},
		{in: "a/../b", want: "b"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range tests {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("sanitizeKey(%q) unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	key, err := store.Write(ctx, UserKey("u1", "flyers", "a.png"), []byte("png"))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if key != "users/u1/flyers/a.png" {
		t.Fatalf("Write() key = %q", key)
	}
	if ok, _ := store.Exists(ctx, key); !ok {
		t.Fatalf("Exists() = false after write")
	}
	data, err := store.Read(ctx, key)
	if err != nil || string(data) != "png" {
		t.Fatalf("Read() = %q, %v", data, err)
	}

	keys, err := store.List(ctx, UserKey("u1", "flyers"))
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(keys) != 1 || keys[0] != key {
		t.Fatalf("List() = %v", keys)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() on missing key error: %v", err)
	}
	if _, err := store.Read(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read() after delete err = %v, want ErrNotFound", err)
	}
}

func TestUserKeyIsInjective(t *testing.T) {
	tests := map[string]string{
		"alice":      "users/alice/x",
		"u-1":        "users/u-1/x",
		"":           "users/_/x",
		"../evil id": "users/_2e2e2f6576696c206964/x",
		"Alice":      "users/_416c696365/x",
	}
	for id, want := range tests {
		if got := UserKey(id, "x"); got != want {
			t.Fatalf("UserKey(%q) = %q, want %q", id, got, want)
		}
	}

	seen := map[string]string{}
	for _, id := range []string{"google:abc", "google_abc", "google-abc", "GOOGLE:abc", "_676f6f676c653a616263", "alice", "Alice", ".", ".."} {
		key := UserKey(id)
		if other, ok := seen[key]; ok {
			t.Fatalf("UserKey(%q) and UserKey(%q) both map to %q", id, other, key)
		}
		seen[key] = id
		if _, err := sanitizeKey(key); err != nil {
			t.Fatalf("UserKey(%q) = %q is not a valid key: %v", id, key, err)
		}
	}
}
