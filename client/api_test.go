package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngerakines/huectl/client"
	"github.com/ngerakines/huectl/client/clienttest"
)

func newBridge(t *testing.T) (*clienttest.Bridge, string) {
	t.Helper()
	bridge := clienttest.NewBridge()
	server := bridge.Start()
	t.Cleanup(server.Close)
	return bridge, server.URL + "/"
}

func TestClient_Lights(t *testing.T) {
	bridge, address := newBridge(t)
	bridge.AddUser("alice")
	bridge.AddLight("1", "Lamp", true, 200)
	bridge.AddLight("2", "Strip", false, 10)

	lights, err := client.NewWithUser(address, "alice").Lights(context.Background())
	require.NoError(t, err)
	require.Len(t, lights, 2)

	assert.Equal(t, "1", lights["1"].ID)
	assert.Equal(t, "Lamp", lights["1"].ProductName)
	assert.True(t, lights["1"].State.On)
	assert.Equal(t, 200, lights["1"].State.Bri)
	assert.False(t, lights["2"].State.On)

	requests := bridge.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/alice/lights", requests[0].Path)
}

func TestClient_Lights_UnknownUser(t *testing.T) {
	_, address := newBridge(t)

	_, err := client.NewWithUser(address, "mallory").Lights(context.Background())
	require.Error(t, err)
	bridgeErr, ok := err.(*client.BridgeError)
	require.True(t, ok)
	assert.Equal(t, client.UnauthorizedDescription, bridgeErr.Description)
}

func TestClient_SetState(t *testing.T) {
	bridge, address := newBridge(t)
	bridge.AddUser("alice")
	bridge.AddLight("3", "Bulb", false, 1)
	c := client.NewWithUser(address, "alice")
	ctx := context.Background()

	response, err := c.SetPower(ctx, "3", true)
	require.NoError(t, err)
	assert.False(t, response.IsError())

	response, err = c.SetBrightness(ctx, "3", 128)
	require.NoError(t, err)
	assert.False(t, response.IsError())

	response, err = c.SetColor(ctx, "3", client.XY{0.25, 0.5})
	require.NoError(t, err)
	assert.False(t, response.IsError())

	light, ok := bridge.Light("3")
	require.True(t, ok)
	assert.True(t, light.State.On)
	assert.Equal(t, 128, light.State.Bri)
	assert.Equal(t, []float64{0.25, 0.5}, light.State.XY)

	requests := bridge.Requests()
	require.Len(t, requests, 3)
	for _, r := range requests {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/alice/lights/3/state", r.Path)
	}
	assert.Equal(t, map[string]interface{}{"on": true}, requests[0].Body)
	assert.Equal(t, map[string]interface{}{"bri": float64(128)}, requests[1].Body)
	assert.Equal(t, map[string]interface{}{"xy": []interface{}{0.25, 0.5}}, requests[2].Body)
}

func TestClient_SetState_BridgeError(t *testing.T) {
	bridge, address := newBridge(t)
	bridge.AddUser("alice")

	response, err := client.NewWithUser(address, "alice").SetPower(context.Background(), "42", true)
	require.NoError(t, err)
	require.True(t, response.IsError())
	assert.Equal(t, "resource, /lights/42/state, not available", response.Err().Description)
}

func TestClient_SetBrightness_Range(t *testing.T) {
	bridge, address := newBridge(t)
	bridge.AddUser("alice")
	bridge.AddLight("1", "Lamp", true, 100)
	c := client.NewWithUser(address, "alice")
	ctx := context.Background()

	for _, level := range []int{-1, 256} {
		_, err := c.SetBrightness(ctx, "1", level)
		assert.Equal(t, client.ErrBrightnessRange, err, "level %d", level)
	}
	assert.Empty(t, bridge.Requests())

	for _, level := range []int{0, 255} {
		_, err := c.SetBrightness(ctx, "1", level)
		assert.NoError(t, err, "level %d", level)
	}
	assert.Len(t, bridge.Requests(), 2)
}

func TestClient_CreateUser(t *testing.T) {
	bridge, address := newBridge(t)
	c := client.New(address)
	ctx := context.Background()

	response, err := c.CreateUser(ctx, "huectl#test")
	require.NoError(t, err)
	require.True(t, response.IsError())
	assert.Equal(t, "link button not pressed", response.Err().Description)

	bridge.PressLinkButton()
	response, err = c.CreateUser(ctx, "huectl#test")
	require.NoError(t, err)
	require.False(t, response.IsError())

	username, err := response.Username()
	require.NoError(t, err)
	assert.Equal(t, []string{username}, bridge.Users())
	assert.Equal(t, "huectl#test", bridge.Requests()[1].Body["devicetype"])
}

func TestValidateBridge(t *testing.T) {
	_, address := newBridge(t)
	assert.True(t, client.ValidateBridge(context.Background(), client.New(address)))

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"other description", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"error":{"type":1,"address":"/","description":"something else"}}]`))
		}},
		{"success item", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"success":{}}]`))
		}},
		{"bad status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`[{"error":{"type":1,"address":"/","description":"unauthorized user"}}]`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>router login</html>`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			assert.False(t, client.ValidateBridge(context.Background(), client.New(server.URL)))
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		address := server.URL
		server.Close()
		c := client.New(address, client.WithTimeout(time.Second))
		assert.False(t, client.ValidateBridge(context.Background(), c))
	})
}

func TestNormalizeAddress(t *testing.T) {
	tests := map[string]string{
		"192.168.1.2":          "http://192.168.1.2/",
		"bridge.local/":        "http://bridge.local/",
		"http://bridge.local":  "http://bridge.local/",
		"https://bridge.local": "https://bridge.local/",
		" http://10.0.0.5/ ":   "http://10.0.0.5/",
	}
	for in, want := range tests {
		assert.Equal(t, want, client.NormalizeAddress(in), in)
	}
}

func TestResponse_Username(t *testing.T) {
	_, err := client.Response{}.Username()
	assert.Error(t, err)

	_, err = client.Response{{Success: []byte(`{"other":"x"}`)}}.Username()
	assert.Error(t, err)

	username, err := client.Response{{Success: []byte(`{"username":"abc"}`)}}.Username()
	require.NoError(t, err)
	assert.Equal(t, "abc", username)
}
