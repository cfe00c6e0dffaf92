package models

// Draft is the per-platform editable unit of content inside a wizard
// session. Drafts are serialized into the session payload stored in Redis
// and embedded into the campaign document at launch time.
type Draft struct {
	Title       string            `bson:"title" json:"title"`
	Description string            `bson:"description" json:"description"`
	Hashtags    []string          `bson:"hashtags" json:"hashtags"`
	Media       []string          `bson:"media" json:"media"`
	Settings    map[string]string `bson:"settings" json:"settings"`
}

// NewDraft returns an empty draft with initialized collections.
func NewDraft() Draft {
	return Draft{
		Hashtags: []string{},
		Media:    []string{},
		Settings: map[string]string{},
	}
}

// Clone returns a deep copy. Drafts carry slices and a map, so callers that
// need value semantics (the enhancement engine, undo) must copy explicitly.
func (d Draft) Clone() Draft {
	out := d
	out.Hashtags = append([]string(nil), d.Hashtags...)
	out.Media = append([]string(nil), d.Media...)
	out.Settings = make(map[string]string, len(d.Settings))
	for k, v := range d.Settings {
		out.Settings[k] = v
	}
	return out
}

// HasHashtag reports whether tag is already present. Comparison is
// case-sensitive: "Growth" and "growth" are distinct tags.
func (d Draft) HasHashtag(tag string) bool {
	for _, t := range d.Hashtags {
		if t == tag {
			return true
		}
	}
	return false
}

// Equal compares two drafts field by field.
func (d Draft) Equal(other Draft) bool {
	if d.Title != other.Title || d.Description != other.Description {
		return false
	}
	if len(d.Hashtags) != len(other.Hashtags) || len(d.Media) != len(other.Media) || len(d.Settings) != len(other.Settings) {
		return false
	}
	for i := range d.Hashtags {
		if d.Hashtags[i] != other.Hashtags[i] {
			return false
		}
	}
	for i := range d.Media {
		if d.Media[i] != other.Media[i] {
			return false
		}
	}
	for k, v := range d.Settings {
		if other.Settings[k] != v {
			return false
		}
	}
	return true
}
