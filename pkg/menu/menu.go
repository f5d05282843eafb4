// Package menu renders the inline keyboard menus and interprets the action
// tokens carried by their buttons. Rendering is a pure function of the
// voice catalog and the requested level; every next state a user can reach
// is encoded in the tokens of the buttons shown, never in server-side
// cursor state.
package menu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/catalog"
)

// Action tokens. Kind is always derivable from a fixed prefix; the payload
// is opaque and only ever looked up in the catalog.
const (
	TokenClear      = "clear"
	TokenCategories = "menu_categories"
	TokenChoose     = "gen_choose" // synonym of TokenCategories
	TokenMainMenu   = "menu_main"

	prefixCategory    = "cat_"
	prefixPreview     = "prev_"
	prefixGenerate    = "tts_"
	prefixGenerateAlt = "gen_"
	prefixGenerateRun = "run_"
	prefixSetCategory = "setcat_"
	prefixSetVoice    = "setvoice_"
	prefixBack        = "back_"

	backCategories         = "back_categories"
	backSettingsCategories = "back_setcats"
)

var (
	ErrUnknownToken    = errors.New("unknown action token")
	ErrUnknownCategory = errors.New("unknown voice category")
	ErrUnknownVoice    = errors.New("unknown voice")
)

// ActionKind is the effect a parsed token requests.
type ActionKind int

const (
	ActionClear ActionKind = iota
	ActionShowCategories
	ActionShowVoices
	ActionPreview
	ActionGenerate
	ActionShowSettingsCategories
	ActionShowSettingsVoices
	ActionSetVoice
)

// Action is the decoded form of one tapped button.
type Action struct {
	Kind     ActionKind
	Category catalog.Category // set for ShowVoices, Preview, ShowSettingsVoices
	Voice    catalog.Voice    // set for Preview, Generate, SetVoice
}

// ParseToken decodes token into an Action, validating catalog payloads.
// Preconditions that depend on session state (a non-empty buffer) are the
// caller's to enforce.
func ParseToken(token string) (Action, error) {
	switch token {
	case TokenClear:
		return Action{Kind: ActionClear}, nil
	case TokenCategories, TokenChoose, backCategories:
		return Action{Kind: ActionShowCategories}, nil
	case TokenMainMenu, backSettingsCategories:
		return Action{Kind: ActionShowSettingsCategories}, nil
	}

	switch {
	case strings.HasPrefix(token, prefixCategory):
		key := strings.TrimPrefix(token, prefixCategory)
		cat, ok := catalog.Lookup(key)
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
		}
		return Action{Kind: ActionShowVoices, Category: cat}, nil

	case strings.HasPrefix(token, prefixPreview):
		payload := strings.TrimPrefix(token, prefixPreview)
		key, voiceID, found := strings.Cut(payload, "_")
		if !found {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
		}
		cat, ok := catalog.Lookup(key)
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
		}
		voice, owner, ok := catalog.FindVoice(voiceID)
		if !ok || owner.Key != cat.Key {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownVoice, voiceID)
		}
		return Action{Kind: ActionPreview, Category: cat, Voice: voice}, nil

	case strings.HasPrefix(token, prefixGenerate),
		strings.HasPrefix(token, prefixGenerateAlt),
		strings.HasPrefix(token, prefixGenerateRun):
		voiceID := token[strings.Index(token, "_")+1:]
		voice, cat, ok := catalog.FindVoice(voiceID)
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownVoice, voiceID)
		}
		return Action{Kind: ActionGenerate, Category: cat, Voice: voice}, nil

	case strings.HasPrefix(token, prefixSetCategory):
		key := strings.TrimPrefix(token, prefixSetCategory)
		cat, ok := catalog.Lookup(key)
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
		}
		return Action{Kind: ActionShowSettingsVoices, Category: cat}, nil

	case strings.HasPrefix(token, prefixSetVoice):
		voiceID := strings.TrimPrefix(token, prefixSetVoice)
		voice, cat, ok := catalog.FindVoice(voiceID)
		if !ok {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownVoice, voiceID)
		}
		return Action{Kind: ActionSetVoice, Category: cat, Voice: voice}, nil

	case strings.HasPrefix(token, prefixBack):
		// Unknown back targets fall through to the category list rather
		// than stranding the user.
		return Action{Kind: ActionShowCategories}, nil
	}

	return Action{}, fmt.Errorf("%w: %q", ErrUnknownToken, token)
}

// RenderConfirmation builds the prompt shown after the buffered input is
// flushed, with a truncated preview of what will be spoken.
func RenderConfirmation(preview string, isSubtitle bool) (string, [][]bus.Button) {
	header := "📝 Text detected"
	if isSubtitle {
		header = "📜 SRT detected"
	}
	prompt := fmt.Sprintf("%s\n\n%s\n\nTap below to convert to audio:", header, preview)
	buttons := [][]bus.Button{
		{{Label: "🎙 Generate Speech Now", Token: TokenCategories}},
		{{Label: "🗑 Clear", Token: TokenClear}},
	}
	return prompt, buttons
}

// RenderCategories builds the language list.
func RenderCategories() (string, [][]bus.Button) {
	var buttons [][]bus.Button
	for _, c := range catalog.Categories() {
		buttons = append(buttons, []bus.Button{
			{Label: c.Label, Token: prefixCategory + c.Key},
		})
	}
	buttons = append(buttons, []bus.Button{{Label: "🗑 Clear", Token: TokenClear}})
	return "🗣 Select language:", buttons
}

// RenderVoices builds the voice list for one category, one row per voice
// with a preview shortcut, plus a back button.
func RenderVoices(cat catalog.Category) (string, [][]bus.Button) {
	var buttons [][]bus.Button
	for _, v := range cat.Voices {
		buttons = append(buttons, []bus.Button{
			{Label: v.Name, Token: prefixGenerate + v.ID},
			{Label: "▶ Preview", Token: prefixPreview + cat.Key + "_" + v.ID},
		})
	}
	buttons = append(buttons, []bus.Button{{Label: "🔙 Back", Token: backCategories}})
	return fmt.Sprintf("🗣 Select %s voice:", cat.Label), buttons
}

// RenderPreviewConfirm is shown after a preview sample was delivered.
func RenderPreviewConfirm(cat catalog.Category, voice catalog.Voice) (string, [][]bus.Button) {
	prompt := fmt.Sprintf("🔉 Preview sent for %s.\nUse this voice?", voice.Name)
	buttons := [][]bus.Button{
		{{Label: "✅ Use " + voice.Name, Token: prefixGenerate + voice.ID}},
		{{Label: "🔁 Pick another", Token: prefixCategory + cat.Key}},
	}
	return prompt, buttons
}

// RenderSettingsCategories builds the category list for the sticky
// default-voice flow. It works without buffered text.
func RenderSettingsCategories() (string, [][]bus.Button) {
	var buttons [][]bus.Button
	for _, c := range catalog.Categories() {
		buttons = append(buttons, []bus.Button{
			{Label: c.Label, Token: prefixSetCategory + c.Key},
		})
	}
	return "⚙️ Pick a default voice language:", buttons
}

// RenderSettingsVoices builds the voice list for the settings flow.
func RenderSettingsVoices(cat catalog.Category) (string, [][]bus.Button) {
	var buttons [][]bus.Button
	for _, v := range cat.Voices {
		buttons = append(buttons, []bus.Button{
			{Label: v.Name, Token: prefixSetVoice + v.ID},
		})
	}
	buttons = append(buttons, []bus.Button{{Label: "🔙 Back", Token: backSettingsCategories}})
	return fmt.Sprintf("⚙️ Default %s voice:", cat.Label), buttons
}

// GenerateToken builds the generate token for a voice id. Exposed so the
// dispatcher can offer a one-tap re-run with the user's default voice.
func GenerateToken(voiceID string) string {
	return prefixGenerate + voiceID
}
