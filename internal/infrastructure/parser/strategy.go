package parser

import (
	"fmt"
	"log/slog"
	"net/http"

	"ReviewScout/internal/config"
	"ReviewScout/internal/domain"
	"ReviewScout/internal/matching"
	"ReviewScout/internal/scanner"
)

// Registry bundles the scanners and the match policy of every configured platform.
type Registry struct {
	Scanners *scanner.Registry
	Policies map[domain.Platform]matching.Policy
}

// NewRegistry builds one scanner per configured platform.
func NewRegistry(platforms []config.PlatformConfig, client *http.Client, log *slog.Logger) (*Registry, error) {
	reg := &Registry{
		Scanners: scanner.NewRegistry(),
		Policies: make(map[domain.Platform]matching.Policy, len(platforms)),
	}

	for _, pc := range platforms {
		platform, err := domain.ParsePlatform(pc.Name)
		if err != nil {
			return nil, fmt.Errorf("platform config: %w", err)
		}

		policy := matching.DefaultPolicy(platform)
		if pc.Policy != "" {
			if policy, err = matching.ParsePolicy(pc.Policy); err != nil {
				return nil, fmt.Errorf("platform %s: %w", platform, err)
			}
		}

		s, err := newScanner(platform, pc, client)
		if err != nil {
			return nil, err
		}
		reg.Scanners.Register(s)
		reg.Policies[platform] = policy

		if log != nil {
			log.Debug("platform registered", "platform", platform, "adapter", pc.Adapter, "policy", policy)
		}
	}
	return reg, nil
}

// Policy returns the configured policy of platform.
func (r *Registry) Policy(platform domain.Platform) matching.Policy {
	if p, ok := r.Policies[platform]; ok {
		return p
	}
	return matching.DefaultPolicy(platform)
}

func newScanner(platform domain.Platform, pc config.PlatformConfig, client *http.Client) (scanner.Scanner, error) {
	switch pc.Adapter {
	case config.AdapterYouTube:
		if platform != domain.PlatformVideo && platform != domain.PlatformShortVideo {
			return nil, fmt.Errorf("platform %s: youtube adapter serves VIDEO and SHORT_VIDEO only", platform)
		}
		return NewYouTubeScanner(platform, pc.Endpoint, pc.APIKey, pc.Options, client), nil
	case config.AdapterInstagram:
		if platform != domain.PlatformPhotoPost {
			return nil, fmt.Errorf("platform %s: instagram adapter serves PHOTO_POST only", platform)
		}
		return NewInstagramScanner(pc.Endpoint, pc.APIKey, pc.Options, client), nil
	case config.AdapterBlog:
		if platform != domain.PlatformBlog {
			return nil, fmt.Errorf("platform %s: blog adapter serves BLOG only", platform)
		}
		return NewBlogScanner(pc.Endpoint, pc.Options, client), nil
	default:
		return nil, fmt.Errorf("platform %s: unknown adapter %q", platform, pc.Adapter)
	}
}
