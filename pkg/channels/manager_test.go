package channels

import (
	"context"
	"testing"

	"github.com/minthantoo333/srttospeech/pkg/bus"
	"github.com/minthantoo333/srttospeech/pkg/config"
)

type stubChannel struct {
	*BaseChannel
	sent []bus.OutboundMessage
}

func (s *stubChannel) Start(ctx context.Context) error {
	s.setRunning(true)
	return nil
}

func (s *stubChannel) Stop(ctx context.Context) error {
	s.setRunning(false)
	return nil
}

func (s *stubChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func newStubManager(mb *bus.MessageBus) (*Manager, *stubChannel) {
	stub := &stubChannel{BaseChannel: NewBaseChannel("stub", mb, nil)}
	m := &Manager{
		channels: map[string]Channel{"stub": stub},
		bus:      mb,
	}
	return m, stub
}

func TestManagerRequiresChannel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Telegram.Token = ""

	if _, err := NewManager(cfg, bus.NewMessageBus()); err == nil {
		t.Fatal("expected error with no channels configured")
	}
}

func TestManagerSendRoutes(t *testing.T) {
	m, stub := newStubManager(bus.NewMessageBus())

	err := m.Send(context.Background(), bus.OutboundMessage{
		Channel: "stub",
		ChatID:  "42",
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(stub.sent) != 1 || stub.sent[0].Content != "hello" {
		t.Errorf("stub received %v, want one hello message", stub.sent)
	}
}

func TestManagerSendUnknownChannel(t *testing.T) {
	m, _ := newStubManager(bus.NewMessageBus())

	err := m.Send(context.Background(), bus.OutboundMessage{Channel: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestManagerRunning(t *testing.T) {
	m, stub := newStubManager(bus.NewMessageBus())

	if got := m.Running(); len(got) != 0 {
		t.Errorf("Running() = %v before start, want empty", got)
	}

	if err := stub.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := m.Running()
	if len(got) != 1 || got[0] != "stub" {
		t.Errorf("Running() = %v, want [stub]", got)
	}
}
