package weathermap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankek/terraform-provider-weathermap/internal/config"
	"github.com/ankek/terraform-provider-weathermap/internal/interfaces"
	"github.com/ankek/terraform-provider-weathermap/internal/logger"
	"github.com/ankek/terraform-provider-weathermap/internal/mapping"
	"github.com/ankek/terraform-provider-weathermap/internal/zabbix"
)

type rate struct{ in, out int64 }

// fakeMonitor serves canned rates, maps and uploads.
type fakeMonitor struct {
	rates    map[string]rate // keyed by hostname
	polled   []string
	uploads  map[string][]byte
	zbxMap   *zabbix.Map
	names    map[string]string
	iconSize map[string][2]int
	sizeGets int

	uploadErr error
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{
		rates:    map[string]rate{},
		uploads:  map[string][]byte{},
		names:    map[string]string{},
		iconSize: map[string][2]int{},
	}
}

func (f *fakeMonitor) ItemRates(ctx context.Context, hostname, itemIn, itemOut string) (int64, int64, error) {
	f.polled = append(f.polled, hostname)
	r, ok := f.rates[hostname]
	if !ok {
		return 0, 0, fmt.Errorf("host %q: %w", hostname, zabbix.ErrNotFound)
	}
	return r.in, r.out, nil
}

func (f *fakeMonitor) UploadImage(ctx context.Context, name string, data []byte) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads[name] = data
	return "img-1", nil
}

func (f *fakeMonitor) MapByName(ctx context.Context, name string) (*zabbix.Map, error) {
	if f.zbxMap == nil || f.zbxMap.Name != name {
		return nil, fmt.Errorf("map %q: %w", name, zabbix.ErrNotFound)
	}
	return f.zbxMap, nil
}

func (f *fakeMonitor) ElementName(ctx context.Context, elementType int, id string) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", zabbix.ErrNotFound
	}
	return name, nil
}

func (f *fakeMonitor) ImageSize(ctx context.Context, imageID string) (int, int, error) {
	f.sizeGets++
	s, ok := f.iconSize[imageID]
	if !ok {
		return 0, 0, zabbix.ErrNotFound
	}
	return s[0], s[1], nil
}

func connectorFor(m *fakeMonitor, calls *int) Connector {
	return func(config.Zabbix) (interfaces.Monitor, error) {
		if calls != nil {
			*calls++
		}
		return m, nil
	}
}

func newTestGenerator(m *fakeMonitor, calls *int) *Generator {
	return NewGenerator(
		WithConnector(connectorFor(m, calls)),
		WithLogger(logger.Discard()),
		WithClock(func() time.Time { return time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC) }),
	)
}

const mapYAML = `
map:
  name: core
  bgcolor: white
  width: 400
  height: 200
zabbix:
  url: http://zabbix.local/api_jsonrpc.php
  login: Admin
  password: zabbix
table:
  show: true
  x: 300
  y: 0
link:
  bandwidth: 1000
  width: 10
node-a: {name: a, label: A, x: 20, y: 100}
node-b: {name: b, label: B, x: 220, y: 100}
node-c: {name: c, x: 220, y: 180}
link-ab: {node1: node-a, node2: node-b, hostname: core-1, itemin: in, itemout: out}
link-bc: {node1: node-b, node2: node-c}
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "core.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	mon := newFakeMonitor()
	mon.rates["core-1"] = rate{in: 0, out: 123_345_123}
	calls := 0
	g := newTestGenerator(mon, &calls)

	out := filepath.Join(dir, "core.png")
	res, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: out,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.NodeCount)
	assert.Equal(t, int64(1), res.LinkCount)
	assert.Equal(t, int64(1), res.SkippedLinks)
	assert.Equal(t, out, res.OutputPath)
	assert.Empty(t, res.ImageID)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"core-1"}, mon.polled)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 200), img.Bounds())

	palette := mapping.DefaultPalette()
	assert.Equal(t, palette[0], rgba(img, 50, 100), "idle input arrow")
	assert.Equal(t, palette[8], rgba(img, 205, 100), "saturated output arrow")
}

func TestGenerate_Upload(t *testing.T) {
	dir := t.TempDir()
	mon := newFakeMonitor()
	mon.rates["core-1"] = rate{in: 1, out: 1}
	g := newTestGenerator(mon, nil)

	res, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: filepath.Join(dir, "core.png"),
		Upload:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "img-1", res.ImageID)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, data, mon.uploads["core"])
}

func TestGenerate_UploadFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	mon := newFakeMonitor()
	mon.rates["core-1"] = rate{in: 1, out: 1}
	mon.uploadErr = errors.New("permission denied")
	g := newTestGenerator(mon, nil)

	out := filepath.Join(dir, "core.png")
	_, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: out,
		Upload:     true,
	})
	assert.ErrorContains(t, err, "failed to upload core: permission denied")
	assert.NoFileExists(t, out)
}

func TestGenerate_NoIcons(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(newFakeMonitor(), nil)

	res, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, `
map: {name: icons, width: 50, height: 50}
node-a: {name: a, icon: router.png, x: 10, y: 10}
`),
		OutputPath: filepath.Join(dir, "icons.png"),
		IconDir:    dir,
		NoIcons:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.NodeCount)
	assert.FileExists(t, res.OutputPath)
}

func TestGenerate_NoMonitoredLinksSkipsConnect(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	g := NewGenerator(
		WithConnector(func(config.Zabbix) (interfaces.Monitor, error) {
			calls++
			return nil, errors.New("unreachable")
		}),
		WithLogger(logger.Discard()),
	)

	res, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, `
map: {name: offline, width: 50, height: 50}
node-a: {name: a, x: 10, y: 10}
`),
		OutputPath: filepath.Join(dir, "offline.png"),
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, int64(1), res.NodeCount)
	assert.Zero(t, res.LinkCount)
}

func TestGenerate_PollFailure(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(newFakeMonitor(), nil)

	out := filepath.Join(dir, "core.png")
	_, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: out,
	})
	assert.ErrorIs(t, err, zabbix.ErrNotFound)
	assert.ErrorContains(t, err, "link link-ab")
	assert.NoFileExists(t, out)
}

func TestGenerate_ConnectFailure(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(
		WithConnector(func(config.Zabbix) (interfaces.Monitor, error) { return nil, errors.New("refused") }),
		WithLogger(logger.Discard()),
	)

	_, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: filepath.Join(dir, "core.png"),
	})
	assert.ErrorContains(t, err, "failed to connect: refused")
}

func TestGenerate_Cancelled(t *testing.T) {
	dir := t.TempDir()
	mon := newFakeMonitor()
	mon.rates["core-1"] = rate{}
	g := newTestGenerator(mon, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: filepath.Join(dir, "core.png"),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mon.polled)
}

func TestGenerate_MissingIcon(t *testing.T) {
	dir := t.TempDir()
	g := newTestGenerator(newFakeMonitor(), nil)

	_, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, `
map: {name: icons, width: 50, height: 50}
node-a: {name: a, icon: router.png, x: 10, y: 10}
`),
		OutputPath: filepath.Join(dir, "icons.png"),
		IconDir:    dir,
	})
	assert.ErrorIs(t, err, mapping.ErrMissingIcon)
}

func TestGenerate_InvalidPaths(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, mapYAML)
	g := newTestGenerator(newFakeMonitor(), nil)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"missing config", Request{ConfigPath: filepath.Join(dir, "absent.yaml"), OutputPath: filepath.Join(dir, "x.png")}, "invalid config path"},
		{"svg output", Request{ConfigPath: cfgPath, OutputPath: filepath.Join(dir, "x.svg")}, "invalid output path"},
		{"icon dir is a file", Request{ConfigPath: cfgPath, OutputPath: filepath.Join(dir, "x.png"), IconDir: cfgPath}, "invalid icon directory"},
		{"missing font", Request{ConfigPath: cfgPath, OutputPath: filepath.Join(dir, "x.png"), FontPath: filepath.Join(dir, "font.ttf")}, "invalid font path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(context.Background(), tt.req)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGenerate_BadFont(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "broken.ttf")
	require.NoError(t, os.WriteFile(font, []byte("not a font"), 0644))
	g := newTestGenerator(newFakeMonitor(), nil)

	_, err := g.Generate(context.Background(), Request{
		ConfigPath: writeConfig(t, dir, mapYAML),
		OutputPath: filepath.Join(dir, "core.png"),
		FontPath:   font,
	})
	assert.ErrorContains(t, err, "failed to parse font")
}

func TestZabbixConnector(t *testing.T) {
	connect := ZabbixConnector(logger.Discard())

	_, err := connect(config.Zabbix{})
	assert.Error(t, err)

	mon, err := connect(config.Zabbix{URL: "http://zabbix.local/api_jsonrpc.php", Login: "Admin"})
	require.NoError(t, err)
	assert.IsType(t, &zabbix.Client{}, mon)
}

func rgba(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}
