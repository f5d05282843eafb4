package channels

import (
	"strings"
	"sync/atomic"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/logger"
)

// BaseChannel carries the behavior every transport shares: the allowlist
// check and publishing inbound events onto the bus.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom []string
	running   atomic.Bool
}

func NewBaseChannel(name string, messageBus *bus.MessageBus, allowFrom []string) *BaseChannel {
	return &BaseChannel{
		name:      name,
		bus:       messageBus,
		allowFrom: allowFrom,
	}
}

func (b *BaseChannel) Name() string {
	return b.name
}

func (b *BaseChannel) IsRunning() bool {
	return b.running.Load()
}

func (b *BaseChannel) setRunning(running bool) {
	b.running.Store(running)
}

// IsAllowed checks senderID against the allowlist. An empty allowlist
// allows everyone. Sender ids may be compound ("123|alice"); allowlist
// entries may be a bare id, "@username", or a legacy compound form.
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}

	id, username, _ := strings.Cut(senderID, "|")
	for _, entry := range b.allowFrom {
		entryID, entryUser, _ := strings.Cut(entry, "|")
		if entry == senderID || entryID == id {
			return true
		}
		if username != "" && (entry == "@"+username || entryUser == username) {
			return true
		}
	}
	return false
}

// HandleInbound applies the allowlist and publishes the event to the bus.
func (b *BaseChannel) HandleInbound(msg bus.InboundMessage) {
	if !b.IsAllowed(msg.SenderID) {
		logger.DebugCF(b.name, "Sender rejected by allowlist", map[string]any{
			"sender_id": msg.SenderID,
		})
		return
	}
	msg.Channel = b.name
	b.bus.PublishInbound(msg)
}
