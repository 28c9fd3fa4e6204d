package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microcasa/internal/telemetry"
)

type fakeClient struct {
	published    []*paho.Publish
	err          error
	disconnected bool
}

func (f *fakeClient) Publish(_ context.Context, p *paho.Publish) (*paho.PublishResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, p)
	return &paho.PublishResponse{}, nil
}

func (f *fakeClient) Disconnect(*paho.Disconnect) error {
	f.disconnected = true
	return nil
}

func TestObserver_SkipsSeedRows(t *testing.T) {
	fc := &fakeClient{}
	m := newMQTT(fc, "microcasa/telemetry", zap.NewNop())

	f := telemetry.New(telemetry.WithObserver(m.Observer("s1")))
	f.Seed()
	assert.Empty(t, fc.published)

	f.SimulateBurst().Run(telemetry.NoPacer{}, 0, nil)
	_, err := f.SubmitReading(32.5, "Sector 7")
	require.NoError(t, err)

	require.Len(t, fc.published, telemetry.BurstSize+1)
	last := fc.published[len(fc.published)-1]
	assert.Equal(t, "microcasa/telemetry", last.Topic)
	assert.EqualValues(t, 1, last.QoS)

	var msg Message
	require.NoError(t, json.Unmarshal(last.Payload, &msg))
	assert.Equal(t, "s1", msg.SessionID)
	assert.Equal(t, "form", msg.Origin)
	assert.Equal(t, "ALERT", msg.Status)
	assert.Equal(t, "Sector 7", msg.Location)
}

func TestObserver_PublishErrorDoesNotBlockAppend(t *testing.T) {
	fc := &fakeClient{err: errors.New("broker gone")}
	m := newMQTT(fc, "t", zap.NewNop())

	f := telemetry.New(telemetry.WithObserver(m.Observer("s1")))
	_, err := f.SubmitReading(20, "")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())
}

func TestPublishPayload(t *testing.T) {
	fc := &fakeClient{}
	m := newMQTT(fc, "t", zap.NewNop())
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, m.Publish("", telemetry.Reading{Seq: 3, Temperature: 29.9, Time: ts, Origin: telemetry.OriginBurst}))
	var msg Message
	require.NoError(t, json.Unmarshal(fc.published[0].Payload, &msg))
	assert.Equal(t, "NORMAL", msg.Status)
	assert.Equal(t, 3, msg.Seq)
	assert.True(t, ts.Equal(msg.Time))

	require.NoError(t, m.Close())
	assert.True(t, fc.disconnected)
}
