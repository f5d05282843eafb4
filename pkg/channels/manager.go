package channels

import (
	"context"
	"fmt"
	"sync"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/config"
	"github.com/minthantoo333/srttospeech/pkg/logger"
)

// Manager owns all transports. UI messages reach it asynchronously through
// the bus; audio deliveries call Send directly so the caller knows when
// delivery finished and can release the artifact.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
	mu       sync.RWMutex
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      messageBus,
	}

	if cfg.Telegram.Token != "" {
		telegram, err := NewTelegramChannel(cfg.Telegram, messageBus)
		if err != nil {
			return nil, fmt.Errorf("telegram channel: %w", err)
		}
		m.channels[telegram.Name()] = telegram
	}

	if len(m.channels) == 0 {
		return nil, fmt.Errorf("no channels configured, set a telegram token")
	}

	return m, nil
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, ch := range m.channels {
		if err := ch.Start(ctx); err != nil {
			return fmt.Errorf("start channel %s: %w", name, err)
		}
		logger.InfoCF("channels", "Channel started", map[string]any{
			"channel": name,
		})
	}

	go m.dispatchOutbound(ctx)
	return nil
}

func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for name, ch := range m.channels {
		if err := ch.Stop(ctx); err != nil {
			logger.WarnCF("channels", "Channel stop failed", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}
}

// Send delivers one outbound message synchronously on its channel.
func (m *Manager) Send(ctx context.Context, msg bus.OutboundMessage) error {
	m.mu.RLock()
	ch, ok := m.channels[msg.Channel]
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown channel %q", msg.Channel)
	}
	return ch.Send(ctx, msg)
}

// dispatchOutbound drains the bus queue for fire-and-forget UI messages.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		if err := m.Send(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Outbound delivery failed", map[string]any{
				"channel": msg.Channel,
				"chat_id": msg.ChatID,
				"error":   err.Error(),
			})
		}
	}
}

// Running reports which channels are currently connected.
func (m *Manager) Running() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name, ch := range m.channels {
		if ch.IsRunning() {
			names = append(names, name)
		}
	}
	return names
}
