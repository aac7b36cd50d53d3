package eventsourcing_test

import (
	"testing"

	"github.com/primabook/primabook/internal/eventsourcing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecDecodeUnknownType(t *testing.T) {
	codec := eventsourcing.NewCodec()
	_, err := codec.Decode("bogus.event", []byte(`{}`))
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := eventsourcing.NewCodec()
	codec.Register("counter.incremented", func() eventsourcing.Event { return &incremented{} })

	data, err := eventsourcing.Encode(&incremented{CounterID: "c1", By: 4})
	require.NoError(t, err)

	decoded, err := codec.Decode("counter.incremented", data)
	require.NoError(t, err)
	assert.Equal(t, &incremented{CounterID: "c1", By: 4}, decoded)
}

func TestCodecDoubleRegistrationPanics(t *testing.T) {
	codec := eventsourcing.NewCodec()
	codec.Register("counter.incremented", func() eventsourcing.Event { return &incremented{} })
	assert.Panics(t, func() {
		codec.Register("counter.incremented", func() eventsourcing.Event { return &incremented{} })
	})
}
