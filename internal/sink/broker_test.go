package sink

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microcasa/internal/telemetry"
)

// startBroker spins up an in-process broker and returns its address along
// with a channel receiving every payload published under microcasa/#.
func startBroker(t *testing.T) (string, <-chan []byte) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	broker := mochi.New(&mochi.Options{InlineClient: true})
	require.NoError(t, broker.AddHook(new(auth.AllowHook), nil))
	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{
		ID:      "t1",
		Type:    "tcp",
		Address: addr,
	})))
	require.NoError(t, broker.Serve())
	t.Cleanup(func() { broker.Close() })

	got := make(chan []byte, 16)
	err = broker.Subscribe("microcasa/#", 1, func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
		got <- append([]byte(nil), pk.Payload...)
	})
	require.NoError(t, err)

	return addr, got
}

func TestDial_PublishesThroughBroker(t *testing.T) {
	addr, got := startBroker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m, err := Dial(ctx, addr, "microcasa-test", "microcasa/telemetry", zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	f := telemetry.New(telemetry.WithObserver(m.Observer("s1")))
	f.Seed()
	_, err = f.SubmitReading(31, "Sector 9")
	require.NoError(t, err)

	select {
	case payload := <-got:
		var msg Message
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, "s1", msg.SessionID)
		assert.Equal(t, "form", msg.Origin)
		assert.Equal(t, "Sector 9", msg.Location)
		assert.InDelta(t, 31.0, msg.Temperature, 1e-9)
	case <-time.After(3 * time.Second):
		t.Fatal("no reading reached the broker")
	}

	select {
	case payload := <-got:
		t.Fatalf("unexpected extra publish: %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDial_UnreachableBroker(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = Dial(ctx, addr, "x", "t", zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial mqtt broker")
}
