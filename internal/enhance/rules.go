package enhance

import (
	"fmt"
	"regexp"
	"strings"

	"social-campaign-platform/internal/platform"
	"social-campaign-platform/models"
)

const (
	ruleNameGrammar      = "grammar"
	ruleNameCTA          = "call_to_action"
	ruleNameHashtags     = "hashtags"
	ruleNameEngaging     = "engaging"
	ruleNameProfessional = "professional"
	ruleNameShorten      = "shorten"
	ruleNameExpand       = "expand"
	ruleNameAllPlatforms = "all_platforms"
	ruleNameCompliance   = "compliance"
)

// keywordRule is the common shape of every built-in rule: substring
// predicates over the lowercased instruction plus a transform.
type keywordRule struct {
	name     string
	keywords []string
	apply    func(rc *Context, d models.Draft) models.Draft
}

func (r keywordRule) Name() string { return r.name }

func (r keywordRule) Matches(instruction string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(instruction, kw) {
			return true
		}
	}
	return false
}

func (r keywordRule) Apply(rc *Context, d models.Draft) models.Draft {
	return r.apply(rc, d)
}

var ctaPool = []string{
	"Don't miss out - check the link in our bio!",
	"Ready to get started? Reach out today.",
	"Share this with someone who needs it.",
	"Drop a comment and tell us what you think.",
	"Sign up now and take the first step.",
}

// hashtagPools are the platform-specific tags injected by the hashtag rule.
var hashtagPools = map[platform.ID][]string{
	platform.Instagram: {"instadaily", "photooftheday", "reels"},
	platform.Facebook:  {"facebooklive", "share"},
	platform.LinkedIn:  {"leadership", "career", "business"},
	platform.TikTok:    {"foryou", "tiktokmademebuyit"},
	platform.YouTube:   {"video", "creator"},
}

// allPlatformSuffixes are appended per platform by the cross-platform rule.
var allPlatformSuffixes = map[platform.ID]string{
	platform.Instagram: "\n\nFollow us for daily inspiration.",
	platform.Facebook:  "\n\nLike our page for more updates.",
	platform.LinkedIn:  "\n\nFollow our page for weekly industry insights.",
	platform.TikTok:    "\n\nFollow for part two!",
	platform.YouTube:   "\n\nNew videos every week.",
}

// energize / calm word tables. The professional rule is the inverse of the
// engaging rule, so keeping them side by side makes drift obvious.
var energyWords = map[string]string{
	"good":        "amazing",
	"great":       "incredible",
	"nice":        "fantastic",
	"interesting": "exciting",
	"helpful":     "game-changing",
}

var calmWords = map[string]string{
	"amazing":       "excellent",
	"incredible":    "noteworthy",
	"fantastic":     "impressive",
	"awesome":       "commendable",
	"game-changing": "valuable",
}

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
	missingSpace     = regexp.MustCompile(`([,.!?;:])([A-Za-z])`)
	repeatedSpace    = regexp.MustCompile(` {2,}`)
	sentenceSplit    = regexp.MustCompile(`[^.!?]+[.!?]+\s*`)
	sentenceEndDot   = regexp.MustCompile(`\.(\s|$)`)
)

// standardRules returns the ordered rule list. Order matters: every rule
// whose predicate matches is applied, in this sequence.
func standardRules() []Rule {
	return []Rule{
		keywordRule{
			name:     ruleNameGrammar,
			keywords: []string{"grammar", "fix"},
			apply: func(_ *Context, d models.Draft) models.Draft {
				desc := d.Description
				desc = spaceBeforePunct.ReplaceAllString(desc, "$1")
				desc = missingSpace.ReplaceAllString(desc, "$1 $2")
				desc = repeatedSpace.ReplaceAllString(desc, " ")
				d.Description = strings.TrimSpace(desc)
				return d
			},
		},
		keywordRule{
			name:     ruleNameCTA,
			keywords: []string{"call to action", "cta"},
			apply: func(rc *Context, d models.Draft) models.Draft {
				cta := ctaPool[rc.Rand.Intn(len(ctaPool))]
				d.Description = strings.TrimRight(d.Description, "\n ") + "\n\n" + cta
				return d
			},
		},
		keywordRule{
			name:     ruleNameHashtags,
			keywords: []string{"hashtag", "tag"},
			apply: func(rc *Context, d models.Draft) models.Draft {
				for _, tag := range hashtagPools[rc.Platform] {
					if !d.HasHashtag(tag) {
						d.Hashtags = append(d.Hashtags, tag)
					}
				}
				return d
			},
		},
		keywordRule{
			name:     ruleNameEngaging,
			keywords: []string{"engaging", "exciting"},
			apply: func(_ *Context, d models.Draft) models.Draft {
				d.Description = replaceWords(d.Description, energyWords)
				d.Description = sentenceEndDot.ReplaceAllString(d.Description, "!$1")
				return d
			},
		},
		keywordRule{
			name:     ruleNameProfessional,
			keywords: []string{"professional", "formal"},
			apply: func(_ *Context, d models.Draft) models.Draft {
				d.Description = replaceWords(d.Description, calmWords)
				d.Description = strings.ReplaceAll(d.Description, "!", ".")
				return d
			},
		},
		keywordRule{
			name:     ruleNameShorten,
			keywords: []string{"shorten", "concise"},
			apply: func(_ *Context, d models.Draft) models.Draft {
				sentences := sentenceSplit.FindAllString(d.Description, -1)
				if len(sentences) > 2 {
					d.Description = strings.TrimSpace(sentences[0] + sentences[1])
				}
				return d
			},
		},
		keywordRule{
			name:     ruleNameExpand,
			keywords: []string{"expand", "detailed"},
			apply: func(_ *Context, d models.Draft) models.Draft {
				d.Description = strings.TrimRight(d.Description, "\n ") +
					" Let's take a closer look at why this matters and how you can put it into practice today."
				return d
			},
		},
		keywordRule{
			name:     ruleNameAllPlatforms,
			keywords: []string{"enhance for all platforms"},
			apply: func(rc *Context, d models.Draft) models.Draft {
				for id, fd := range rc.Fanout {
					if suffix, ok := allPlatformSuffixes[id]; ok {
						fd.Description = strings.TrimRight(fd.Description, "\n ") + suffix
						rc.Fanout[id] = fd
					}
				}
				if suffix, ok := allPlatformSuffixes[rc.Platform]; ok {
					d.Description = strings.TrimRight(d.Description, "\n ") + suffix
					if rc.Fanout != nil {
						rc.Fanout[rc.Platform] = d.Clone()
					}
				}
				return d
			},
		},
		keywordRule{
			name:     ruleNameCompliance,
			keywords: []string{"compliance", "platform policy"},
			apply: func(rc *Context, d models.Draft) models.Draft {
				name := string(rc.Platform)
				if cap, err := platform.Lookup(rc.Platform); err == nil {
					name = cap.DisplayName
				}
				d.Description = strings.TrimRight(d.Description, "\n ") +
					fmt.Sprintf("\n\nContent reviewed for %s platform policy compliance.", name)
				return d
			},
		},
	}
}

// replaceWords swaps whole words only, preserving leading capitalization.
func replaceWords(text string, table map[string]string) string {
	for from, to := range table {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			if match == "" {
				return match
			}
			first := match[0]
			if first >= 'A' && first <= 'Z' && len(to) > 0 {
				return strings.ToUpper(to[:1]) + to[1:]
			}
			return to
		})
	}
	return text
}
