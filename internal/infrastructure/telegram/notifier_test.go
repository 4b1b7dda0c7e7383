package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestPublishDigestPostsForm(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		texts []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("chat_id"); got != "42" {
			t.Errorf("chat_id = %q", got)
		}
		mu.Lock()
		texts = append(texts, r.PostForm.Get("text"))
		mu.Unlock()
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "TOKEN", "42", srv.Client())
	if err := n.PublishDigest(context.Background(), "2 new VIDEO review(s)\n- one\n- two\n"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(texts) != 1 || !strings.Contains(texts[0], "- two") {
		t.Fatalf("unexpected messages %q", texts)
	}
}

func TestPublishDigestReportsAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, "TOKEN", "42", srv.Client())
	err := n.PublishDigest(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestPublishDigestMisconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "", "42", nil).PublishDigest(context.Background(), "x"); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("abcd\n", 5)
	parts := splitMessage(text, 10)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d: %q", len(parts), parts)
	}
	for _, p := range parts {
		if len([]rune(p)) > 10 {
			t.Fatalf("part too long: %q", p)
		}
	}

	long := splitMessage(strings.Repeat("x", 25), 10)
	if len(long) != 3 || long[2] != "xxxxx" {
		t.Fatalf("unexpected long split %q", long)
	}

	if got := splitMessage("  ", 10); got != nil {
		t.Fatalf("expected no parts for blank text, got %q", got)
	}
}
