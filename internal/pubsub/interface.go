package pubsub

import "context"

// PubSubClient is the push channel between devices: snapshot-change
// events ride it so peers converge without waiting for the next poll.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error

	// Listen blocks receiving messages from the subscription and hands
	// each raw payload to the handler. It returns when ctx is done.
	Listen(ctx context.Context, subscriptionID string, handler func(data []byte)) error
}
