// Package catalog holds the static voice catalog: categories of neural
// voices keyed by a short routing token, each mapping display names to
// globally unique voice identifiers.
package catalog

// Voice is a single synthesizer voice a user can pick.
type Voice struct {
	Name string // display name shown on buttons
	ID   string // synthesis engine voice identifier
}

// Category groups voices under a language heading.
type Category struct {
	Key    string // routing token, unique across the catalog
	Label  string // display label shown on buttons
	Voices []Voice
}

// SamplePhrase is the fixed text synthesized for voice previews.
const SamplePhrase = "Hello! This is a short preview of the selected voice."

var categories = []Category{
	{
		Key:   "burmese",
		Label: "🇲🇲 Burmese",
		Voices: []Voice{
			{Name: "Male (Thiha)", ID: "my-MM-ThihaNeural"},
			{Name: "Female (Nilar)", ID: "my-MM-NilarNeural"},
		},
	},
	{
		Key:   "japanese",
		Label: "🇯🇵 Japanese",
		Voices: []Voice{
			{Name: "Female (Nanami)", ID: "ja-JP-NanamiNeural"},
			{Name: "Male (Keita)", ID: "ja-JP-KeitaNeural"},
		},
	},
	{
		Key:   "english",
		Label: "🇺🇸 English",
		Voices: []Voice{
			{Name: "Female (Aria)", ID: "en-US-AriaNeural"},
			{Name: "Male (Guy)", ID: "en-US-GuyNeural"},
		},
	},
	{
		Key:   "multilingual",
		Label: "🌍 Multilingual",
		Voices: []Voice{
			{Name: "Male (Andrew)", ID: "en-US-AndrewMultilingualNeural"},
			{Name: "Female (Ava)", ID: "en-US-AvaMultilingualNeural"},
		},
	},
}

// Categories returns all categories in display order.
func Categories() []Category {
	return categories
}

// Lookup returns the category for a routing key.
func Lookup(key string) (Category, bool) {
	for _, c := range categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// FindVoice resolves a voice id anywhere in the catalog. Voice ids are the
// sole lookup key when generating, so they must be unique across categories.
func FindVoice(id string) (Voice, Category, bool) {
	for _, c := range categories {
		for _, v := range c.Voices {
			if v.ID == id {
				return v, c, true
			}
		}
	}
	return Voice{}, Category{}, false
}

// HasVoice reports whether a voice id exists in the catalog.
func HasVoice(id string) bool {
	_, _, ok := FindVoice(id)
	return ok
}
