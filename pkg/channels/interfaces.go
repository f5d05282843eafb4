// Package channels connects chat transports to the message bus. Each
// channel turns transport events into inbound bus messages and renders
// outbound bus messages back onto the transport.
package channels

import (
	"context"

	"github.com/minthantoo333/srttospeech/pkg/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
}
