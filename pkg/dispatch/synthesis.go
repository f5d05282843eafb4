package dispatch

import (
	"context"
	"os"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/catalog"
	"github.com/minthantoo333/srttospeech/pkg/logger"
	"github.com/minthantoo333/srttospeech/pkg/menu"
	"github.com/minthantoo333/srttospeech/pkg/session"
	"github.com/minthantoo333/srttospeech/pkg/subtitle"
)

// startGenerate validates the generate preconditions, replaces the menu
// with a placeholder and kicks off synthesis in the background.
func (d *Dispatcher) startGenerate(ctx context.Context, msg bus.InboundMessage, s *session.Session, voiceID string) {
	if !s.HasText() {
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Text expired. Please send it again.")
		return
	}

	if l := d.limiter(msg.SenderID); l != nil && !l.Allow() {
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Too many conversions. Please wait a minute and retry.")
		return
	}

	if !s.TryBeginGenerate() {
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"A conversion is already running. Please wait for it to finish.")
		return
	}

	d.edit(msg, "⏳ Generating audio…\n(This may take a few seconds)", nil)

	d.spawn(func() {
		defer s.EndGenerate()
		d.runSynthesis(ctx, msg, s, voiceID)
	})
}

// runSynthesis is the terminal step of the pipeline: normalize the
// buffer, synthesize, deliver, delete the artifact, and clear the buffer
// on success only. Artifact deletion happens on every path.
func (d *Dispatcher) runSynthesis(ctx context.Context, msg bus.InboundMessage, s *session.Session, voiceID string) {
	text := subtitle.Normalize(s.Buffer())
	if text == "" {
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Nothing to speak after removing subtitle timestamps.")
		return
	}

	artifact, err := d.synth.Synthesize(ctx, text, voiceID)
	if err != nil {
		logger.ErrorCF("dispatch", "Synthesis failed", map[string]any{
			"user_id": s.UserID,
			"voice":   voiceID,
			"error":   err.Error(),
		})
		// Buffer stays intact so the user can retry without re-sending.
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Audio generation failed. Tap a voice to retry.")
		return
	}
	defer os.Remove(artifact)

	err = d.sender.Send(ctx, bus.OutboundMessage{
		Channel:         msg.Channel,
		ChatID:          msg.ChatID,
		AudioPath:       artifact,
		AudioTitle:      "Generated Speech",
		Content:         "✅ Voice: " + voiceID,
		DeleteMessageID: msg.MessageID,
	})
	if err != nil {
		logger.ErrorCF("dispatch", "Audio delivery failed", map[string]any{
			"user_id": s.UserID,
			"error":   err.Error(),
		})
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Could not deliver the audio. Tap a voice to retry.")
		return
	}

	d.sessions.Clear(s.UserID)
	logger.InfoCF("dispatch", "Conversion delivered", map[string]any{
		"user_id": s.UserID,
		"voice":   voiceID,
	})
}

// runPreview synthesizes the fixed sample phrase with the chosen voice,
// delivers it and offers accept/retry. The buffer is untouched.
func (d *Dispatcher) runPreview(ctx context.Context, msg bus.InboundMessage, action menu.Action) {
	artifact, err := d.synth.Synthesize(ctx, catalog.SamplePhrase, action.Voice.ID)
	if err != nil {
		logger.ErrorCF("dispatch", "Preview synthesis failed", map[string]any{
			"voice": action.Voice.ID,
			"error": err.Error(),
		})
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Preview failed. Pick a voice to try again.")
		return
	}
	defer os.Remove(artifact)

	err = d.sender.Send(ctx, bus.OutboundMessage{
		Channel:    msg.Channel,
		ChatID:     msg.ChatID,
		AudioPath:  artifact,
		AudioTitle: "Voice Preview",
		Content:    "🔉 " + action.Voice.Name,
	})
	if err != nil {
		d.reportError(msg.Channel, msg.ChatID, msg.MessageID,
			"Could not deliver the preview. Pick a voice to try again.")
		return
	}

	prompt, buttons := menu.RenderPreviewConfirm(action.Category, action.Voice)
	d.edit(msg, prompt, buttons)
}
