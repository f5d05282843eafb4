// Package dispatch is the event loop of the bot: it consumes inbound
// fragments, button taps and file uploads from the bus, drives the
// per-user session state and the menu transitions, and orchestrates
// speech synthesis.
package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/catalog"
	"github.com/minthantoo333/srttospeech/pkg/config"
	"github.com/minthantoo333/srttospeech/pkg/logger"
	"github.com/minthantoo333/srttospeech/pkg/menu"
	"github.com/minthantoo333/srttospeech/pkg/session"
	"github.com/minthantoo333/srttospeech/pkg/speech"
	"github.com/minthantoo333/srttospeech/pkg/subtitle"
	"github.com/minthantoo333/srttospeech/pkg/utils"
)

// fileFlushDelay is the near-zero debounce used for file uploads: a file
// is a complete unit, not a split-message fragment.
const fileFlushDelay = 50 * time.Millisecond

const previewLength = 100

const greeting = "👋 Ready!\nPaste your SRT text or upload a file.\n\n" +
	"/voice - pick a default voice\n/clear - discard buffered text"

// Sender delivers an outbound message synchronously. The dispatcher uses
// it where ordering against artifact cleanup matters; everything else
// goes through the bus.
type Sender interface {
	Send(ctx context.Context, msg bus.OutboundMessage) error
}

type Dispatcher struct {
	cfg      *config.Config
	bus      *bus.MessageBus
	sessions *session.Store
	synth    speech.Synthesizer
	sender   Sender

	limiters sync.Map // userID -> *rate.Limiter
	wg       sync.WaitGroup
}

func New(cfg *config.Config, messageBus *bus.MessageBus, synth speech.Synthesizer, sender Sender) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		bus:      messageBus,
		sessions: session.NewStore(cfg.Limits.MaxBufferBytes),
		synth:    synth,
		sender:   sender,
	}
}

// Sessions exposes the session store, used by tests and status reporting.
func (d *Dispatcher) Sessions() *session.Store {
	return d.sessions
}

// Run consumes inbound events until ctx is cancelled. Events for one user
// are handled in arrival order; synthesis runs in the background so one
// user's conversion never blocks another's session.
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.InfoC("dispatch", "Dispatcher running")

	for {
		msg, ok := d.bus.ConsumeInbound(ctx)
		if !ok {
			break
		}
		d.handle(ctx, msg)
	}

	d.wg.Wait()
	return nil
}

func (d *Dispatcher) handle(ctx context.Context, msg bus.InboundMessage) {
	s := d.sessions.Get(msg.SenderID)
	s.SetChatID(msg.ChatID)

	switch msg.Kind {
	case bus.KindText:
		d.handleText(msg)
	case bus.KindFile:
		d.handleFragment(msg, fileFlushDelay)
	case bus.KindCallback:
		d.handleCallback(ctx, msg)
	default:
		logger.WarnCF("dispatch", "Dropping inbound with unknown kind", map[string]any{
			"kind": string(msg.Kind),
		})
	}
}

func (d *Dispatcher) handleText(msg bus.InboundMessage) {
	switch strings.TrimSpace(msg.Content) {
	case "/start":
		d.bus.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: greeting,
		})
		return
	case "/voice":
		prompt, buttons := menu.RenderSettingsCategories()
		d.bus.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: prompt,
			Buttons: buttons,
		})
		return
	case "/clear":
		d.sessions.Clear(msg.SenderID)
		d.bus.PublishOutbound(bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Content: "🗑 Cleared. Send new text.",
		})
		return
	}

	d.handleFragment(msg, d.cfg.DebounceWindow())
}

// handleFragment appends one fragment and reschedules the flush. N
// fragments inside the window produce a single confirmation prompt.
func (d *Dispatcher) handleFragment(msg bus.InboundMessage, delay time.Duration) {
	if err := d.sessions.Append(msg.SenderID, msg.Content); err != nil {
		if errors.Is(err, session.ErrBufferFull) {
			d.reportError(msg.Channel, msg.ChatID, "",
				"Buffered text is too large. Use /clear and send a shorter text.")
			return
		}
		logger.ErrorCF("dispatch", "Append failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	channel, chatID := msg.Channel, msg.ChatID
	d.sessions.Touch(msg.SenderID, delay, func(s *session.Session) {
		d.flush(channel, chatID, s)
	})
}

// flush treats the buffer as complete and shows the confirmation prompt.
func (d *Dispatcher) flush(channel, chatID string, s *session.Session) {
	text := s.Buffer()
	if text == "" {
		return
	}

	preview := utils.Truncate(utils.CollapseNewlines(text), previewLength)
	prompt, buttons := menu.RenderConfirmation(preview, subtitle.IsSubtitle(text))

	// One-tap shortcut when the user has a usable default voice.
	if voiceID := d.sessions.VoiceOrDefault(s.UserID, d.cfg.TTS.DefaultVoice); voiceID != "" {
		if voice, _, ok := catalog.FindVoice(voiceID); ok {
			shortcut := []bus.Button{{Label: "🎙 Use " + voice.Name, Token: menu.GenerateToken(voice.ID)}}
			buttons = append([][]bus.Button{shortcut}, buttons...)
		}
	}

	logger.DebugCF("dispatch", "Buffer flushed", map[string]any{
		"user_id":  s.UserID,
		"buffered": len(text),
	})

	d.bus.PublishOutbound(bus.OutboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: prompt,
		Buttons: buttons,
	})
}

func (d *Dispatcher) handleCallback(ctx context.Context, msg bus.InboundMessage) {
	action, err := menu.ParseToken(msg.Content)
	if err != nil {
		logger.WarnCF("dispatch", "Bad action token", map[string]any{
			"token": msg.Content,
			"error": err.Error(),
		})
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"That button is no longer valid. Please send your text again.")
		return
	}

	s := d.sessions.Get(msg.SenderID)

	switch action.Kind {
	case menu.ActionClear:
		d.sessions.Clear(msg.SenderID)
		d.edit(msg, "🗑 Cleared. Send new text.", nil)

	case menu.ActionShowCategories:
		if !s.HasText() {
			d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
				"Text expired. Please send it again.")
			return
		}
		prompt, buttons := menu.RenderCategories()
		d.edit(msg, prompt, buttons)

	case menu.ActionShowVoices:
		if !s.HasText() {
			d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
				"Text expired. Please send it again.")
			return
		}
		prompt, buttons := menu.RenderVoices(action.Category)
		d.edit(msg, prompt, buttons)

	case menu.ActionPreview:
		d.edit(msg, "⏳ Preparing preview…", nil)
		d.spawn(func() { d.runPreview(ctx, msg, action) })

	case menu.ActionGenerate:
		d.startGenerate(ctx, msg, s, action.Voice.ID)

	case menu.ActionShowSettingsCategories:
		prompt, buttons := menu.RenderSettingsCategories()
		d.edit(msg, prompt, buttons)

	case menu.ActionShowSettingsVoices:
		prompt, buttons := menu.RenderSettingsVoices(action.Category)
		d.edit(msg, prompt, buttons)

	case menu.ActionSetVoice:
		d.sessions.SetVoice(msg.SenderID, action.Voice.ID)
		d.edit(msg, "✅ Default voice set to "+action.Voice.Name+".", nil)
	}
}

// edit replaces the message that carried the tapped button. The next menu
// state always lands where the previous one was rendered.
func (d *Dispatcher) edit(msg bus.InboundMessage, content string, buttons [][]bus.Button) {
	d.bus.PublishOutbound(bus.OutboundMessage{
		Channel:       msg.Channel,
		ChatID:        msg.ChatID,
		Content:       content,
		Buttons:       buttons,
		EditMessageID: msg.MessageID,
	})
}

// reportError surfaces a failure to the user without touching session
// state, so a retry remains possible.
func (d *Dispatcher) reportError(channel, chatID, editID, text string) {
	d.bus.PublishOutbound(bus.OutboundMessage{
		Channel:       channel,
		ChatID:        chatID,
		Content:       "❌ " + text,
		EditMessageID: editID,
	})
}

func (d *Dispatcher) spawn(fn func()) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
}

func (d *Dispatcher) limiter(userID string) *rate.Limiter {
	perMinute := d.cfg.Limits.GeneratesPerMinute
	if perMinute <= 0 {
		return nil
	}
	if l, ok := d.limiters.Load(userID); ok {
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	actual, _ := d.limiters.LoadOrStore(userID, l)
	return actual.(*rate.Limiter)
}
