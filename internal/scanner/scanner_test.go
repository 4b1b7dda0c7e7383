package scanner

import (
	"context"
	"errors"
	"testing"

	"ReviewScout/internal/domain"
)

type fakeScanner struct{ platform domain.Platform }

func (f fakeScanner) Platform() domain.Platform { return f.platform }

func (f fakeScanner) Search(context.Context, Query) ([]domain.Candidate, error) { return nil, nil }

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(fakeScanner{platform: domain.PlatformVideo})
	reg.Register(fakeScanner{platform: domain.PlatformBlog})

	s, err := reg.Resolve(domain.PlatformVideo)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if s.Platform() != domain.PlatformVideo {
		t.Fatalf("unexpected platform %s", s.Platform())
	}

	if _, err := reg.Resolve(domain.PlatformPhotoPost); !errors.Is(err, domain.ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}

	got := reg.Platforms()
	if len(got) != 2 || got[0] != domain.PlatformBlog || got[1] != domain.PlatformVideo {
		t.Fatalf("unexpected platforms %v", got)
	}
}
