package zabbix

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Auth   string          `json:"auth"`
	ID     int64           `json:"id"`
	Bearer string          `json:"-"`
}

// fakeZabbix answers JSON-RPC calls from per-method handlers.
type fakeZabbix struct {
	t        *testing.T
	mu       sync.Mutex
	calls    []rpcCall
	handlers map[string]func(params json.RawMessage) (any, *APIError)
}

func newFakeZabbix(t *testing.T) (*fakeZabbix, *Client) {
	f := &fakeZabbix{t: t, handlers: map[string]func(json.RawMessage) (any, *APIError){
		"apiinfo.version": func(json.RawMessage) (any, *APIError) { return "7.0.0", nil },
		"user.login":      func(json.RawMessage) (any, *APIError) { return "token-1", nil },
	}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, New(srv.URL, "Admin", "zabbix", WithRetry(1, time.Millisecond, time.Millisecond))
}

func (f *fakeZabbix) handle(method string, h func(params json.RawMessage) (any, *APIError)) {
	f.handlers[method] = h
}

func (f *fakeZabbix) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

func (f *fakeZabbix) last() rpcCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeZabbix) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call rpcCall
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&call))
	assert.Equal(f.t, "application/json-rpc", r.Header.Get("Content-Type"))
	call.Bearer = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.handlers[call.Method]
	f.mu.Unlock()

	resp := map[string]any{"jsonrpc": "2.0", "id": call.ID}
	switch {
	case !ok:
		resp["error"] = &APIError{Code: -32601, Message: "Method not found.", Data: call.Method}
	case call.Method != "user.login" && call.Method != "apiinfo.version" && call.Auth+call.Bearer != "token-1":
		resp["error"] = &APIError{Code: -32602, Message: "Invalid params.", Data: "Not authorised."}
	default:
		result, apiErr := h(call.Params)
		if apiErr != nil {
			resp["error"] = apiErr
		} else {
			resp["result"] = result
		}
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(resp))
}

func decodeParams(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestClient_LoginIsLazy(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("host.get", func(json.RawMessage) (any, *APIError) {
		return []map[string]string{{"hostid": "10084"}}, nil
	})

	id, err := c.HostID(context.Background(), "core-1")
	require.NoError(t, err)
	assert.Equal(t, "10084", id)

	_, err = c.HostID(context.Background(), "core-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"apiinfo.version", "user.login", "host.get", "host.get"}, f.methods())
}

func TestClient_LoginFailure(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("user.login", func(json.RawMessage) (any, *APIError) {
		return nil, &APIError{Code: -32602, Message: "Invalid params.", Data: "Incorrect user name or password."}
	})

	_, err := c.HostID(context.Background(), "core-1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "user.login", apiErr.Method)
	assert.Contains(t, err.Error(), "login as Admin")
}

func TestClient_APIVersion(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("apiinfo.version", func(json.RawMessage) (any, *APIError) { return "6.0.25", nil })

	v, err := c.APIVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "6.0.25", v)
	assert.Equal(t, []string{"apiinfo.version"}, f.methods())
}

func TestClient_AuthByVersion(t *testing.T) {
	tests := []struct {
		name       string
		versionErr *APIError
		reply      string
		userKey    string
		bodyAuth   string
		bearerAuth string
	}{
		{name: "bearer header", reply: "7.2.0", userKey: "username", bearerAuth: "token-1"},
		{name: "6.4 uses header", reply: "6.4.0", userKey: "username", bearerAuth: "token-1"},
		{name: "6.0 uses body", reply: "6.0.25", userKey: "username", bodyAuth: "token-1"},
		{name: "5.0 logs in with user", reply: "5.0.40", userKey: "user", bodyAuth: "token-1"},
		{
			name:       "unknown version",
			versionErr: &APIError{Code: -32601, Message: "Method not found."},
			userKey:    "username",
			bearerAuth: "token-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c := newFakeZabbix(t)
			f.handle("apiinfo.version", func(json.RawMessage) (any, *APIError) {
				if tt.versionErr != nil {
					return nil, tt.versionErr
				}
				return tt.reply, nil
			})
			f.handle("user.login", func(raw json.RawMessage) (any, *APIError) {
				p := decodeParams(t, raw)
				assert.Equal(t, "Admin", p[tt.userKey])
				return "token-1", nil
			})
			f.handle("host.get", func(json.RawMessage) (any, *APIError) {
				return []map[string]string{{"hostid": "10084"}}, nil
			})

			_, err := c.HostID(context.Background(), "core-1")
			require.NoError(t, err)

			call := f.last()
			assert.Equal(t, "host.get", call.Method)
			assert.Equal(t, tt.bodyAuth, call.Auth)
			assert.Equal(t, tt.bearerAuth, call.Bearer)
		})
	}
}

func TestVersionAtLeast(t *testing.T) {
	assert.True(t, versionAtLeast("6.4.0", "v6.4"))
	assert.True(t, versionAtLeast("7.0.12", "v6.4"))
	assert.False(t, versionAtLeast("6.2.9", "v6.4"))
	assert.False(t, versionAtLeast("5.0.1", "v5.4"))
	assert.True(t, versionAtLeast("", "v6.4"))
	assert.True(t, versionAtLeast("next", "v6.4"))
}

func TestClient_ItemRates(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("host.get", func(raw json.RawMessage) (any, *APIError) {
		p := decodeParams(t, raw)
		assert.Equal(t, map[string]any{"name": "core-1"}, p["filter"])
		return []map[string]string{{"hostid": "10084"}}, nil
	})
	f.handle("item.get", func(raw json.RawMessage) (any, *APIError) {
		filter := decodeParams(t, raw)["filter"].(map[string]any)
		assert.Equal(t, "10084", filter["hostid"])
		switch filter["key_"] {
		case "net.if.in[eth0]":
			return []map[string]string{{"itemid": "1", "lastvalue": "123345123"}}, nil
		case "net.if.out[eth0]":
			return []map[string]string{{"itemid": "2", "lastvalue": "999.9"}}, nil
		}
		return []any{}, nil
	})

	in, out, err := c.ItemRates(context.Background(), "core-1", "net.if.in[eth0]", "net.if.out[eth0]")
	require.NoError(t, err)
	assert.Equal(t, int64(123345123), in)
	assert.Equal(t, int64(999), out)

	_, _, err = c.ItemRates(context.Background(), "core-1", "net.if.in[eth0]", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_LookupErrors(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("host.get", func(raw json.RawMessage) (any, *APIError) {
		if decodeParams(t, raw)["filter"].(map[string]any)["name"] == "dup" {
			return []map[string]string{{"hostid": "1"}, {"hostid": "2"}}, nil
		}
		return []any{}, nil
	})
	f.handle("item.get", func(json.RawMessage) (any, *APIError) {
		return []map[string]string{{"itemid": "1", "lastvalue": "n/a"}}, nil
	})

	_, err := c.HostID(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.HostID(context.Background(), "dup")
	assert.ErrorIs(t, err, ErrAmbiguous)

	_, err = c.ItemValue(context.Background(), "1", "text.item")
	assert.ErrorContains(t, err, "invalid number")
}

func TestClient_HTTPErrorIsRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "Admin", "zabbix", WithRetry(2, time.Millisecond, time.Millisecond))
	_, err := c.APIVersion(context.Background())
	assert.Error(t, err)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestClient_ContextCancelled(t *testing.T) {
	_, c := newFakeZabbix(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.APIVersion(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_MapByName(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("map.get", func(raw json.RawMessage) (any, *APIError) {
		p := decodeParams(t, raw)
		assert.Contains(t, p, "selectSelements")
		assert.Contains(t, p, "selectLinks")
		return []map[string]any{{
			"sysmapid": "3",
			"name":     "core",
			"width":    "800",
			"height":   600,
			"selements": []map[string]any{
				{"selementid": "1", "elementid": "10084", "elementtype": "0", "iconid_off": "151", "x": "80", "y": "90"},
			},
			"links": []map[string]any{
				{"linkid": "7", "selementid1": "1", "selementid2": "2"},
			},
		}}, nil
	})

	m, err := c.MapByName(context.Background(), "core")
	require.NoError(t, err)
	assert.Equal(t, "core", m.Name)
	assert.EqualValues(t, 800, m.Width)
	assert.EqualValues(t, 600, m.Height)
	require.Len(t, m.Elements, 1)
	assert.EqualValues(t, ElementHost, m.Elements[0].ElementType)
	assert.EqualValues(t, 80, m.Elements[0].X)
	assert.Equal(t, "151", m.Elements[0].IconIDOff)
	assert.Equal(t, []Link{{LinkID: "7", SelementID1: "1", SelementID2: "2"}}, m.Links)
}

func TestClient_ElementName(t *testing.T) {
	f, c := newFakeZabbix(t)
	f.handle("host.get", func(raw json.RawMessage) (any, *APIError) {
		assert.Equal(t, "10084", decodeParams(t, raw)["hostids"])
		return []map[string]string{{"host": "core-1"}}, nil
	})
	f.handle("trigger.get", func(json.RawMessage) (any, *APIError) {
		return []map[string]string{{"description": "Link down"}}, nil
	})
	f.handle("hostgroup.get", func(json.RawMessage) (any, *APIError) {
		return []map[string]string{{"name": "Routers"}}, nil
	})

	name, err := c.ElementName(context.Background(), ElementHost, "10084")
	require.NoError(t, err)
	assert.Equal(t, "core-1", name)

	name, err = c.ElementName(context.Background(), ElementTrigger, "5")
	require.NoError(t, err)
	assert.Equal(t, "Link down", name)

	name, err = c.ElementName(context.Background(), ElementHostGroup, "2")
	require.NoError(t, err)
	assert.Equal(t, "Routers", name)

	_, err = c.ElementName(context.Background(), 9, "1")
	assert.ErrorContains(t, err, "unsupported element type 9")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestClient_ImageSize(t *testing.T) {
	f, c := newFakeZabbix(t)
	icon := pngBytes(t, 48, 32)
	f.handle("image.get", func(raw json.RawMessage) (any, *APIError) {
		assert.Equal(t, true, decodeParams(t, raw)["select_image"])
		return []map[string]string{{"imageid": "151", "image": base64.StdEncoding.EncodeToString(icon)}}, nil
	})

	w, h, err := c.ImageSize(context.Background(), "151")
	require.NoError(t, err)
	assert.Equal(t, 48, w)
	assert.Equal(t, 32, h)
}

func TestClient_UploadImage(t *testing.T) {
	data := pngBytes(t, 4, 4)
	encoded := base64.StdEncoding.EncodeToString(data)

	t.Run("create", func(t *testing.T) {
		f, c := newFakeZabbix(t)
		f.handle("image.get", func(json.RawMessage) (any, *APIError) { return []any{}, nil })
		f.handle("image.create", func(raw json.RawMessage) (any, *APIError) {
			p := decodeParams(t, raw)
			assert.Equal(t, "core", p["name"])
			assert.EqualValues(t, 2, p["imagetype"])
			assert.Equal(t, encoded, p["image"])
			return map[string]any{"imageids": []string{"200"}}, nil
		})

		id, err := c.UploadImage(context.Background(), "core", data)
		require.NoError(t, err)
		assert.Equal(t, "200", id)
		assert.Equal(t, []string{"apiinfo.version", "user.login", "image.get", "image.create"}, f.methods())
	})

	t.Run("update", func(t *testing.T) {
		f, c := newFakeZabbix(t)
		f.handle("image.get", func(json.RawMessage) (any, *APIError) {
			return []map[string]string{{"imageid": "150", "name": "core"}}, nil
		})
		f.handle("image.update", func(raw json.RawMessage) (any, *APIError) {
			p := decodeParams(t, raw)
			assert.Equal(t, "150", p["imageid"])
			assert.Equal(t, encoded, p["image"])
			return map[string]any{"imageids": []string{"150"}}, nil
		})

		id, err := c.UploadImage(context.Background(), "core", data)
		require.NoError(t, err)
		assert.Equal(t, "150", id)
		assert.Equal(t, []string{"apiinfo.version", "user.login", "image.get", "image.update"}, f.methods())
	})
}

func TestFlexInt(t *testing.T) {
	var v struct {
		A flexInt `json:"a"`
		B flexInt `json:"b"`
		C flexInt `json:"c"`
		D flexInt `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"42","b":7,"c":"","d":"1.9"}`), &v))
	assert.EqualValues(t, 42, v.A)
	assert.EqualValues(t, 7, v.B)
	assert.EqualValues(t, 0, v.C)
	assert.EqualValues(t, 1, v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"x"}`), &v))
}
