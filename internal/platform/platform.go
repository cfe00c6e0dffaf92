// Package platform is the static registry of supported social channels and
// their per-platform capabilities. The registry is immutable and defined at
// process start.
package platform

import (
	"errors"
	"fmt"
)

// ID identifies a supported social channel.
type ID string

const (
	Instagram ID = "instagram"
	Facebook  ID = "facebook"
	LinkedIn  ID = "linkedin"
	TikTok    ID = "tiktok"
	YouTube   ID = "youtube"
)

// Feature is a per-platform capability flag.
type Feature string

const (
	FeatureHashtags  Feature = "hashtags"
	FeatureMusic     Feature = "music"
	FeatureLocation  Feature = "location"
	FeatureMentions  Feature = "mentions"
	FeatureThumbnail Feature = "thumbnail"
	FeatureEffects   Feature = "effects"
	FeatureFeeling   Feature = "feeling"
)

// ErrUnknownPlatform is returned for ids outside the registry. Callers must
// treat this as fatal to the operation rather than substituting a default.
var ErrUnknownPlatform = errors.New("unknown platform")

// Capability describes what a platform supports: which post types it offers
// (in display order), which features it exposes, and how long a post
// description may be.
type Capability struct {
	DisplayName       string
	PostTypes         []string
	Features          map[Feature]bool
	MaxDescriptionLen int
}

// HasFeature reports whether the platform supports the given feature.
func (c Capability) HasFeature(f Feature) bool {
	return c.Features[f]
}

// HasPostType reports whether postType is one of the platform's allowed
// post types.
func (c Capability) HasPostType(postType string) bool {
	for _, pt := range c.PostTypes {
		if pt == postType {
			return true
		}
	}
	return false
}

var registry = map[ID]Capability{
	Instagram: {
		DisplayName: "Instagram",
		PostTypes:   []string{"Post", "Reels", "Story"},
		Features: map[Feature]bool{
			FeatureHashtags: true,
			FeatureMusic:    true,
			FeatureLocation: true,
			FeatureMentions: true,
			FeatureEffects:  true,
		},
		MaxDescriptionLen: 2200,
	},
	Facebook: {
		DisplayName: "Facebook",
		PostTypes:   []string{"Post", "Story", "Reel"},
		Features: map[Feature]bool{
			FeatureHashtags: true,
			FeatureLocation: true,
			FeatureMentions: true,
			FeatureFeeling:  true,
		},
		MaxDescriptionLen: 63206,
	},
	LinkedIn: {
		DisplayName: "LinkedIn",
		PostTypes:   []string{"Post", "Article", "Document"},
		Features: map[Feature]bool{
			FeatureHashtags: true,
			FeatureMentions: true,
		},
		MaxDescriptionLen: 3000,
	},
	TikTok: {
		DisplayName: "TikTok",
		PostTypes:   []string{"Video", "Story"},
		Features: map[Feature]bool{
			FeatureHashtags: true,
			FeatureMusic:    true,
			FeatureEffects:  true,
			FeatureMentions: true,
		},
		MaxDescriptionLen: 2200,
	},
	YouTube: {
		DisplayName: "YouTube",
		PostTypes:   []string{"Video", "Short", "Live"},
		Features: map[Feature]bool{
			FeatureHashtags:  true,
			FeatureThumbnail: true,
			FeatureLocation:  true,
		},
		MaxDescriptionLen: 5000,
	},
}

// ordered list for deterministic iteration
var all = []ID{Instagram, Facebook, LinkedIn, TikTok, YouTube}

// All returns the supported platform ids in display order.
func All() []ID {
	out := make([]ID, len(all))
	copy(out, all)
	return out
}

// Lookup returns the capability record for id. Unknown ids fail with
// ErrUnknownPlatform so that typos surface instead of silently inheriting
// another platform's limits.
func Lookup(id ID) (Capability, error) {
	cap, ok := registry[id]
	if !ok {
		return Capability{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, id)
	}
	return cap, nil
}

// Parse validates a raw string as a platform id.
func Parse(raw string) (ID, error) {
	id := ID(raw)
	if _, ok := registry[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, raw)
	}
	return id, nil
}
