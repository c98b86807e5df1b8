package pubsub

type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	Close() error
}
