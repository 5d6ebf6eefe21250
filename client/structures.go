package client

import (
	"encoding/json"
	"fmt"
)

// Light is a single light as reported by the bridge's lights resource.
type Light struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	ProductName string `json:"productname"`
	State       struct {
		On        bool      `json:"on"`
		Bri       int       `json:"bri"`
		XY        []float64 `json:"xy,omitempty"`
		Reachable bool      `json:"reachable"`
	} `json:"state"`
}

// XY is a chromaticity coordinate pair, serialized as [x, y].
type XY [2]float64

// BridgeError is the error object of a response item.
type BridgeError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge error %d: %s", e.Type, e.Description)
}

// ResponseItem is one element of a bridge response array. Exactly one of
// Success and Error is set.
type ResponseItem struct {
	Success json.RawMessage `json:"success,omitempty"`
	Error   *BridgeError    `json:"error,omitempty"`
}

// Response is the array every bridge write (and most failures) answer with.
type Response []ResponseItem

// IsError reports whether the first item of the response is an error.
func (r Response) IsError() bool {
	return len(r) > 0 && r[0].Error != nil
}

// Err returns the first item's error, or nil.
func (r Response) Err() *BridgeError {
	if !r.IsError() {
		return nil
	}
	return r[0].Error
}

// Username extracts success.username from the first item, as returned when
// a user is created.
func (r Response) Username() (string, error) {
	if len(r) == 0 || r.IsError() || len(r[0].Success) == 0 {
		return "", fmt.Errorf("error: response carries no success item")
	}
	dat := &struct {
		Username string `json:"username"`
	}{}
	if err := json.Unmarshal(r[0].Success, dat); err != nil {
		return "", err
	}
	if dat.Username == "" {
		return "", fmt.Errorf("error: success item carries no username")
	}
	return dat.Username, nil
}
