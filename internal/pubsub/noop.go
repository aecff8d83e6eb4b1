package pubsub

import (
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// noop logs events instead of publishing them. It still encodes the payload
// so that unencodable events fail the same way they would in production.
type noop struct{}

// NewNoop creates a client for running without a GCP project.
func NewNoop() PubSubClient {
	return noop{}
}

func (noop) SendMessage(topic EventType, data any) error {
	encoded, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	log.Info("Pubsub disabled, dropping event", "topic", topic, "bytes", len(encoded))
	return nil
}

func (noop) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (noop) Close() {}
