package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	authURL       = "api"
	probeURL      = "api/newdeveloper"
	lightsURL     = "api/%s/lights"
	lightStateURL = "api/%s/lights/%s/state"
)

// DefaultTimeout bounds every request made to the bridge.
const DefaultTimeout = 10 * time.Second

// UnauthorizedDescription is what a real bridge answers for an unknown user.
const UnauthorizedDescription = "unauthorized user"

var ErrBrightnessRange = errors.New("Brightness must be between 0 and 255")

type BridgeClient interface {
	Address() string
	Lights(ctx context.Context) (map[string]*Light, error)
	SetPower(ctx context.Context, id string, on bool) (Response, error)
	SetBrightness(ctx context.Context, id string, level int) (Response, error)
	SetColor(ctx context.Context, id string, xy XY) (Response, error)
	QueryNewUser(ctx context.Context) (Response, error)
	CreateUser(ctx context.Context, deviceType string) (Response, error)
}

type bridgeClient struct {
	address string
	user    string

	httpClient *http.Client
}

// Option configures a client.
type Option func(*bridgeClient)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *bridgeClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *bridgeClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client without a user, enough to probe a bridge and pair with it.
func New(address string, opts ...Option) BridgeClient {
	return NewWithUser(address, "", opts...)
}

// NewWithUser creates a client for a bridge and an authorized user.
func NewWithUser(address, user string, opts ...Option) BridgeClient {
	c := &bridgeClient{
		address: address,
		user:    user,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *bridgeClient) Address() string {
	return c.address
}

// Lights returns every light known to the bridge keyed by id.
func (c *bridgeClient) Lights(ctx context.Context) (map[string]*Light, error) {
	var raw json.RawMessage
	if err := c.request(ctx, http.MethodGet, c.url(lightsURL, c.user), nil, &raw); err != nil {
		return nil, err
	}

	// Failures such as an unknown user come back as an error array.
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var response Response
		if err := json.Unmarshal(trimmed, &response); err != nil {
			return nil, errors.Wrap(err, "could not decode lights response")
		}
		if bridgeErr := response.Err(); bridgeErr != nil {
			return nil, bridgeErr
		}
		return map[string]*Light{}, nil
	}

	lights := map[string]*Light{}
	if err := json.Unmarshal(raw, &lights); err != nil {
		return nil, errors.Wrap(err, "could not decode lights response")
	}
	for id, light := range lights {
		light.ID = id
	}
	return lights, nil
}

func (c *bridgeClient) SetPower(ctx context.Context, id string, on bool) (Response, error) {
	return c.setState(ctx, id, map[string]interface{}{"on": on})
}

// SetBrightness rejects levels outside 0-255 without contacting the bridge.
func (c *bridgeClient) SetBrightness(ctx context.Context, id string, level int) (Response, error) {
	if err := ValidateBrightness(level); err != nil {
		return nil, err
	}
	return c.setState(ctx, id, map[string]interface{}{"bri": level})
}

func (c *bridgeClient) SetColor(ctx context.Context, id string, xy XY) (Response, error) {
	return c.setState(ctx, id, map[string]interface{}{"xy": xy})
}

// QueryNewUser asks the bridge about a user that never exists. A genuine
// bridge answers with an "unauthorized user" error item.
func (c *bridgeClient) QueryNewUser(ctx context.Context) (Response, error) {
	var response Response
	if err := c.request(ctx, http.MethodGet, c.url(probeURL), nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// CreateUser will attempt to get a username from the bridge. The bridge's
// link button must have been pressed shortly before for this to succeed;
// otherwise the response is an error item.
func (c *bridgeClient) CreateUser(ctx context.Context, deviceType string) (Response, error) {
	body := map[string]string{"devicetype": deviceType}
	var response Response
	if err := c.request(ctx, http.MethodPost, c.url(authURL), body, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *bridgeClient) setState(ctx context.Context, id string, state map[string]interface{}) (Response, error) {
	var response Response
	if err := c.request(ctx, http.MethodPut, c.url(lightStateURL, c.user, id), state, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *bridgeClient) request(ctx context.Context, method, url string, body interface{}, target interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "could not encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrapf(err, "could not create request: %s %s", method, url)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return errors.Wrapf(err, "request failed: %s %s", method, url)
	}
	defer response.Body.Close()

	log.WithFields(log.Fields{
		"method": method,
		"url":    url,
		"status": response.StatusCode,
	}).Debug("bridge request")

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("error: bad status code from hue bridge: %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return errors.Wrapf(err, "could not decode response: %s %s", method, url)
	}
	return nil
}

func (c *bridgeClient) url(path string, args ...interface{}) string {
	if len(args) > 0 {
		path = fmt.Sprintf(path, args...)
	}
	return strings.TrimSuffix(c.address, "/") + "/" + path
}

// ValidateBrightness returns ErrBrightnessRange unless 0 <= level <= 255.
func ValidateBrightness(level int) error {
	if level < 0 || level > 255 {
		return ErrBrightnessRange
	}
	return nil
}

// NormalizeAddress prefixes http:// when no scheme is given and makes sure
// the address ends with a slash.
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		address = "http://" + address
	}
	if !strings.HasSuffix(address, "/") {
		address += "/"
	}
	return address
}

// ValidateBridge reports whether the client points at something answering
// like a Hue bridge: HTTP 200 and an "unauthorized user" error for the probe.
// Any failure along the way, network errors included, means no.
func ValidateBridge(ctx context.Context, c BridgeClient) bool {
	response, err := c.QueryNewUser(ctx)
	if err != nil {
		log.WithError(err).WithField("address", c.Address()).Debug("bridge probe failed")
		return false
	}
	bridgeErr := response.Err()
	return bridgeErr != nil && bridgeErr.Description == UnauthorizedDescription
}
