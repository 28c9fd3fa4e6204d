package storage

import (
	"context"
	"encoding/csv"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microcasa/internal/config"
	"microcasa/internal/telemetry"
)

func TestLocalProvider_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewLocalProvider(t.TempDir())

	keys, err := p.List(ctx, "empty", "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, p.Put(ctx, "b", "s1/a.csv", strings.NewReader("x,y\n"), "text/csv"))
	require.NoError(t, p.Put(ctx, "b", "s2/b.csv", strings.NewReader("z\n"), "text/csv"))

	keys, err = p.List(ctx, "b", "s1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1/a.csv"}, keys)

	obj, err := p.Get(ctx, "b", "s1/a.csv")
	require.NoError(t, err)
	defer obj.Body.Close()
	assert.EqualValues(t, 4, obj.ContentLength)

	require.NoError(t, p.Delete(ctx, "b", "s2/b.csv"))
	keys, err = p.List(ctx, "b", "")
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestLocalProvider_RejectsEscapingKeys(t *testing.T) {
	p := NewLocalProvider(t.TempDir())
	err := p.Put(context.Background(), "b", "../../etc/passwd", strings.NewReader(""), "")
	assert.Error(t, err)
}

func TestExportTelemetry(t *testing.T) {
	ctx := context.Background()
	c := NewWithProvider(NewLocalProvider(t.TempDir()), "telemetry")

	f := telemetry.New(telemetry.WithSource(rand.New(rand.NewSource(9))))
	f.Seed()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	key, err := c.ExportTelemetry(ctx, "sess", at, f.All())
	require.NoError(t, err)
	assert.Equal(t, "sess/20260304T050607.000Z.csv", key)

	keys, err := c.ListExports(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	obj, err := c.DownloadExport(ctx, key)
	require.NoError(t, err)
	defer obj.Body.Close()
	records, err := csv.NewReader(obj.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, telemetry.SeedSize+1, "header plus one row per reading")

	assert.ErrorIs(t, c.DeleteExport(ctx, "other", "20260304T050607.000Z.csv"), ErrNotFound)
	require.NoError(t, c.DeleteExport(ctx, "sess", "20260304T050607.000Z.csv"))
	keys, err = c.ListExports(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.ErrorIs(t, c.DeleteExport(ctx, "sess", "20260304T050607.000Z.csv"), ErrNotFound)
}

func TestNew_Providers(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Provider = "local"
	cfg.Storage.LocalStorage = t.TempDir()
	c, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &LocalProvider{}, c.backend)

	cfg.Storage.Provider = "s3"
	cfg.Storage.Region = "us-east-1"
	c, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3Provider{}, c.backend)

	cfg.Storage.Provider = "ftp"
	_, err = New(cfg)
	assert.Error(t, err)
}
