package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/IdleCultivation_Go/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	var got []Event

	bus.Subscribe(SignIn, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	evt := NewSignInEvent(LuckChangedPayloadV1{CharacterID: "c1", OldScore: 10, NewScore: 80, Tier: "FORTUNE"})
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, got, 1)
	assert.Equal(t, EventSchemaVersion, got[0].Version)
	payload, err := DecodePayload[LuckChangedPayloadV1](got[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 80, payload.NewScore)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewMemoryBus()
	assert.NoError(t, bus.Publish(context.Background(), Event{Type: "nobody_listens"}))
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	count := 0
	handler := func(ctx context.Context, e Event) error {
		count++
		return nil
	}

	bus.Subscribe(Breakthrough, handler)
	bus.Subscribe(Breakthrough, handler)

	require.NoError(t, bus.Publish(context.Background(), Event{Version: "1.0", Type: Breakthrough}))
	assert.Equal(t, 2, count)
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	called := false

	bus.Subscribe(SessionLogin, func(ctx context.Context, e Event) error {
		return errors.New("handler error")
	})
	bus.Subscribe(SessionLogin, func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), Event{Version: "1.0", Type: SessionLogin})
	assert.Error(t, err)
	assert.True(t, called, "later handlers still run after a failure")
}

func TestEvent_CharacterID(t *testing.T) {
	evt := NewSpecialEventEvent("char-1", domain.SpecialEvent{Name: "epiphany", Positive: true, Effect: domain.EffectExperience, Amount: 150, Applied: 150})
	require.NotNil(t, evt.CharacterID())
	assert.Equal(t, "char-1", *evt.CharacterID())
	assert.Equal(t, SpecialEvent, evt.Type)

	assert.Nil(t, Event{Type: SignIn}.CharacterID())
}

func TestDecodePayload(t *testing.T) {
	want := CultivationTickPayloadV1{CharacterID: "c9", Ticks: 3, Offline: true}

	tests := []struct {
		name    string
		payload interface{}
	}{
		{"value", want},
		{"pointer", &want},
		{"generic map", map[string]interface{}{"character_id": "c9", "ticks": 3, "offline": true}},
		{"raw json", json.RawMessage(`{"character_id":"c9","ticks":3,"offline":true}`)},
		{"bytes", []byte(`{"character_id":"c9","ticks":3,"offline":true}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload[CultivationTickPayloadV1](tt.payload)
			require.NoError(t, err)
			assert.Equal(t, want.CharacterID, got.CharacterID)
			assert.Equal(t, want.Ticks, got.Ticks)
			assert.Equal(t, want.Offline, got.Offline)
		})
	}
}

func TestDecodePayload_Errors(t *testing.T) {
	_, err := DecodePayload[CultivationTickPayloadV1](nil)
	assert.ErrorIs(t, err, ErrNilPayload)

	var missing *CultivationTickPayloadV1
	_, err = DecodePayload[CultivationTickPayloadV1](missing)
	assert.ErrorIs(t, err, ErrNilPayload)

	_, err = DecodePayload[CultivationTickPayloadV1](json.RawMessage(`{"ticks":"many"}`))
	assert.Error(t, err)
}

func TestCalculateRetryDelay(t *testing.T) {
	base := RetryInitialDelaySeconds * time.Second
	assert.Equal(t, base, CalculateRetryDelay(base, 1))
	assert.Equal(t, 4*base, CalculateRetryDelay(base, 3))
}
