package storage

import (
	"strings"
	"testing"
)

func TestAvatarKey(t *testing.T) {
	key := AvatarKey(7, "Me.PNG")
	if !strings.HasPrefix(key, "avatars/7-") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
	if AvatarKey(7, "Me.PNG") == key {
		t.Error("keys should be unique per upload")
	}
	if k := AvatarKey(1, "noext"); !strings.HasSuffix(k, ".bin") {
		t.Errorf("expected .bin fallback, got %q", k)
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("http://localhost:9000/", "avatars", "avatars/1-x.png")
	want := "http://localhost:9000/avatars/avatars/1-x.png"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
