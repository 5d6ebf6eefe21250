// Package clienttest provides an in-process stand-in for a Hue bridge that
// speaks the subset of the v1 API used by huectl.
package clienttest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kr/pretty"

	"github.com/ngerakines/huectl/client"
)

// Request is a request received by the bridge, kept for assertions.
type Request struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// Bridge is an http.Handler emulating a bridge. The zero value is not
// usable; call NewBridge.
type Bridge struct {
	// Log, when set, receives a dump of every request.
	Log io.Writer

	mu          sync.Mutex
	lights      map[string]*client.Light
	users       map[string]bool
	linkPressed bool
	requests    []Request
}

func NewBridge() *Bridge {
	return &Bridge{
		lights: make(map[string]*client.Light),
		users:  make(map[string]bool),
	}
}

// Start serves the bridge on a loopback httptest server.
func (b *Bridge) Start() *httptest.Server {
	return httptest.NewServer(b)
}

func (b *Bridge) AddLight(id, productName string, on bool, bri int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	light := &client.Light{ID: id, Name: productName, ProductName: productName, Type: "Extended color light"}
	light.State.On = on
	light.State.Bri = bri
	light.State.Reachable = true
	b.lights[id] = light
}

func (b *Bridge) AddUser(username string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[username] = true
}

// PressLinkButton allows the next user creation to succeed.
func (b *Bridge) PressLinkButton() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkPressed = true
}

func (b *Bridge) Users() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := make([]string, 0, len(b.users))
	for user := range b.users {
		users = append(users, user)
	}
	return users
}

// Light returns a copy of the light's current state.
func (b *Bridge) Light(id string) (client.Light, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	light, ok := b.lights[id]
	if !ok {
		return client.Light{}, false
	}
	return *light, true
}

func (b *Bridge) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := Request{Method: r.Method, Path: r.URL.Path}
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			json.Unmarshal(data, &req.Body)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.Log != nil {
		pretty.Fprintf(b.Log, "%# v\n", req)
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) == 0 || parts[0] != "api" {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodPost:
		b.createUser(w, req)
	case len(parts) == 3 && parts[2] == "lights" && r.Method == http.MethodGet:
		if !b.users[parts[1]] {
			writeError(w, 1, "/lights", client.UnauthorizedDescription)
			return
		}
		writeJSON(w, b.lights)
	case len(parts) == 5 && parts[2] == "lights" && parts[4] == "state" && r.Method == http.MethodPut:
		if !b.users[parts[1]] {
			writeError(w, 1, "/lights/"+parts[3]+"/state", client.UnauthorizedDescription)
			return
		}
		b.setState(w, parts[3], req.Body)
	case len(parts) >= 2 && r.Method == http.MethodGet:
		if !b.users[parts[1]] {
			writeError(w, 1, "/", client.UnauthorizedDescription)
			return
		}
		writeJSON(w, map[string]interface{}{})
	default:
		http.NotFound(w, r)
	}
}

func (b *Bridge) createUser(w http.ResponseWriter, req Request) {
	if _, ok := req.Body["devicetype"].(string); !ok {
		writeError(w, 5, "/", "invalid/missing parameters in body")
		return
	}
	if !b.linkPressed {
		writeError(w, 101, "", "link button not pressed")
		return
	}
	b.linkPressed = false
	username := strings.ReplaceAll(uuid.NewString(), "-", "")
	b.users[username] = true
	writeJSON(w, []map[string]interface{}{
		{"success": map[string]string{"username": username}},
	})
}

func (b *Bridge) setState(w http.ResponseWriter, id string, body map[string]interface{}) {
	address := "/lights/" + id + "/state"
	light, ok := b.lights[id]
	if !ok {
		writeError(w, 3, address, fmt.Sprintf("resource, %s, not available", address))
		return
	}

	results := []map[string]interface{}{}
	for key, value := range body {
		switch key {
		case "on":
			on, ok := value.(bool)
			if !ok {
				writeError(w, 7, address+"/on", fmt.Sprintf("invalid value, %v, for parameter, on", value))
				return
			}
			light.State.On = on
		case "bri":
			bri, ok := value.(float64)
			if !ok || bri < 1 || bri > 254 {
				writeError(w, 7, address+"/bri", fmt.Sprintf("invalid value, %v, for parameter, bri", value))
				return
			}
			light.State.Bri = int(bri)
		case "xy":
			pair, ok := value.([]interface{})
			if !ok || len(pair) != 2 {
				writeError(w, 7, address+"/xy", fmt.Sprintf("invalid value, %v, for parameter, xy", value))
				return
			}
			x, _ := pair[0].(float64)
			y, _ := pair[1].(float64)
			light.State.XY = []float64{x, y}
		default:
			writeError(w, 6, address+"/"+key, fmt.Sprintf("parameter, %s, not available", key))
			return
		}
		results = append(results, map[string]interface{}{
			"success": map[string]interface{}{address + "/" + key: value},
		})
	}
	writeJSON(w, results)
}

func writeError(w http.ResponseWriter, errType int, address, description string) {
	writeJSON(w, []map[string]interface{}{
		{"error": client.BridgeError{Type: errType, Address: address, Description: description}},
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
