// Package template expands a generic content idea into platform-specific
// draft copy. Expansion is a pure function of (idea, platform): same inputs
// always produce the same draft.
package template

import (
	"fmt"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/models"
)

// Platform boilerplate appended to expanded descriptions. Exported so the
// wizard summary and tests can recognize templated copy.
const (
	LinkedInNetworkingPrompt = "\n\nWhat has been your experience? Share your thoughts in the comments and let's connect."
	YouTubeSubscribePrompt   = "\n\nIf you found this helpful, hit like, leave a comment, and subscribe for more."
	InstagramSavePrompt      = "\n\nDouble tap if you agree and save this for later!"
	FacebookSharePrompt      = "\n\nTag a friend who needs to see this."
)

// expansion is the typed output of one platform template.
type expansion struct {
	title       string
	description string
	hashtags    []string
}

// templates maps each platform to the function that renders idea copy for
// it. A function table instead of placeholder strings keeps the fields each
// template consumes visible to the compiler.
var templates = map[platform.ID]func(idea models.ContentIdea) expansion{
	platform.Instagram: func(idea models.ContentIdea) expansion {
		return expansion{
			title:       idea.Title,
			description: idea.Description + InstagramSavePrompt,
			hashtags:    []string{"instagood", "explore"},
		}
	},
	platform.Facebook: func(idea models.ContentIdea) expansion {
		return expansion{
			title:       idea.Title,
			description: idea.Description + FacebookSharePrompt,
			hashtags:    []string{"community"},
		}
	},
	platform.LinkedIn: func(idea models.ContentIdea) expansion {
		return expansion{
			title:       idea.Title,
			description: idea.Description + LinkedInNetworkingPrompt,
			hashtags:    []string{"professionaldevelopment", "networking"},
		}
	},
	platform.TikTok: func(idea models.ContentIdea) expansion {
		// TikTok bakes discovery tags into the title itself.
		return expansion{
			title:       fmt.Sprintf("%s #fyp #viral", idea.Title),
			description: idea.Description,
			hashtags:    []string{"fyp", "viral", "trending"},
		}
	},
	platform.YouTube: func(idea models.ContentIdea) expansion {
		return expansion{
			title:       idea.Title,
			description: idea.Description + YouTubeSubscribePrompt,
			hashtags:    []string{"youtube", "subscribe"},
		}
	},
}

// Expand renders idea into a draft for the given platform. The hashtag list
// is the order-preserving union of the idea's curated hashtags, its tags,
// and the platform's own extras, first occurrence winning.
func Expand(idea models.ContentIdea, id platform.ID) (models.Draft, error) {
	if _, err := platform.Lookup(id); err != nil {
		return models.Draft{}, err
	}

	render := templates[id]
	exp := render(idea)

	draft := models.NewDraft()
	draft.Title = exp.title
	draft.Description = exp.description
	draft.Hashtags = unionOrdered(idea.Hashtags, idea.Tags, exp.hashtags)

	if idea.MediaRef != "" {
		draft.Media = []string{idea.MediaRef}
	}

	return draft, nil
}

// unionOrdered merges the given tag lists preserving first-seen order.
func unionOrdered(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, tag := range list {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
