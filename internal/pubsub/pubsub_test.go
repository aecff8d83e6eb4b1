package pubsub

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestDatasetEvent_RoundTripsThroughProcessMessage(t *testing.T) {
	loadedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := DatasetEvent{Generation: 3, Days: 12, NewestDay: 12, Winner: "Bo", LoadedAt: loadedAt}

	data, err := msgpack.Marshal(event)
	require.NoError(t, err)

	var decoded DatasetEvent
	require.NoError(t, NewNoop().ProcessMessage(data, &decoded))
	assert.Equal(t, event.Generation, decoded.Generation)
	assert.Equal(t, "Bo", decoded.Winner)
	assert.True(t, loadedAt.Equal(decoded.LoadedAt))
}

func TestNoop(t *testing.T) {
	client := NewNoop()
	assert.NoError(t, client.SendMessage(EventDatasetLoaded, DatasetEvent{Generation: 1}))
	assert.Error(t, client.SendMessage(EventDatasetLoaded, make(chan int)), "unencodable payloads are rejected")

	var out DatasetEvent
	assert.Error(t, client.ProcessMessage([]byte{0xc1}, &out))
	client.Close()
}

func TestMock(t *testing.T) {
	mock := NewMock()
	mock.SendMessageFunc = func(topic EventType, data any) error {
		if topic == EventDatasetReloaded {
			return errors.New("boom")
		}
		return nil
	}

	assert.NoError(t, mock.SendMessage(EventDatasetLoaded, DatasetEvent{Generation: 0}))
	assert.Error(t, mock.SendMessage(EventDatasetReloaded, DatasetEvent{Generation: 1}))

	sent := mock.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, EventDatasetLoaded, sent[0].Topic)
	assert.Equal(t, uint64(1), sent[1].Data.(DatasetEvent).Generation)

	mock.Reset()
	assert.Empty(t, mock.Sent())
}
