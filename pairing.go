package huectl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ngerakines/huectl/client"
)

// ErrPairingAborted is returned when the operator stops answering or the
// attempt limit is reached.
var ErrPairingAborted = errors.New("pairing aborted")

const applicationName = "huectl"

var osHostname = os.Hostname

// Pairing walks the operator through first time setup: finding the bridge
// and creating a user on it. Both steps repeat until they succeed, the
// context is done, the prompter fails, or MaxAttempts is reached.
type Pairing struct {
	Store     *ConfigStore
	Prompter  Prompter
	Out       io.Writer
	NewClient func(address string) client.BridgeClient

	// Discoverer is used when the operator enters an empty bridge URL.
	Discoverer client.Discoverer

	DeviceType string

	// MaxAttempts bounds each step; zero means no limit.
	MaxAttempts int
}

// Ensure runs whichever steps are needed for cfg to address the bridge.
func (p *Pairing) Ensure(ctx context.Context, cfg *Configuration) error {
	if !cfg.HasBridgeURL() {
		if err := p.BridgeURL(ctx, cfg); err != nil {
			return err
		}
	}
	if !cfg.HasUser() {
		if err := p.User(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Setup runs both steps regardless of what cfg already holds.
func (p *Pairing) Setup(ctx context.Context, cfg *Configuration) error {
	if err := p.BridgeURL(ctx, cfg); err != nil {
		return err
	}
	return p.User(ctx, cfg)
}

// BridgeURL prompts until the operator names something that answers like a
// bridge, then persists the normalized URL.
func (p *Pairing) BridgeURL(ctx context.Context, cfg *Configuration) error {
	fmt.Fprintln(p.Out, "No bridge URL configured.")

	message := "Enter bridge URL: "
	for attempt := 1; ; attempt++ {
		input, err := p.Prompter.Prompt(ctx, message)
		if err != nil {
			return promptError(err)
		}

		if address, ok := p.resolveAddress(ctx, input); ok {
			log.WithField("address", address).Info("Found bridge")
			return p.Store.SaveTo(cfg, FieldBridgeURL, address)
		}

		fmt.Fprintln(p.Out, "Invalid bridge URL.")
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return errors.Wrapf(ErrPairingAborted, "no valid bridge URL after %d attempts", attempt)
		}
		message = "Try again: "
	}
}

// User creates a user on the configured bridge, asking the operator to press
// the link button for as long as the bridge refuses.
func (p *Pairing) User(ctx context.Context, cfg *Configuration) error {
	fmt.Fprintln(p.Out, "You have not created a user yet.")
	fmt.Fprintln(p.Out, "Creating user...")

	bridge := p.NewClient(cfg.BridgeURL)
	deviceType := p.DeviceType
	if deviceType == "" {
		deviceType = DefaultDeviceType()
	}

	var response client.Response
	for attempt := 1; ; attempt++ {
		var err error
		response, err = bridge.CreateUser(ctx, deviceType)
		if err != nil {
			return errors.Wrap(err, "could not create user")
		}
		if !response.IsError() {
			break
		}

		log.WithField("description", response.Err().Description).Debug("User creation refused")
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return errors.Wrapf(ErrPairingAborted, "link button not pressed after %d attempts", attempt)
		}
		fmt.Fprintln(p.Out, "Press the link button on your hue bridge.")
		if _, err := p.Prompter.Prompt(ctx, "Press enter to continue."); err != nil {
			return promptError(err)
		}
	}

	username, err := response.Username()
	if err != nil {
		return errors.Wrap(err, "unexpected response to user creation")
	}
	if err := p.Store.SaveTo(cfg, FieldUser, username); err != nil {
		return err
	}

	fmt.Fprintf(p.Out, "Successfully created user! (%s)\n", username)
	return nil
}

func (p *Pairing) resolveAddress(ctx context.Context, input string) (string, bool) {
	if strings.TrimSpace(input) != "" {
		address := client.NormalizeAddress(input)
		return address, client.ValidateBridge(ctx, p.NewClient(address))
	}

	if p.Discoverer == nil {
		return "", false
	}
	fmt.Fprintln(p.Out, "Searching for bridges...")
	candidates, err := p.Discoverer.Discover(ctx)
	if err != nil {
		log.WithError(err).Warn("Bridge discovery failed.")
	}
	for _, candidate := range candidates {
		address := client.NormalizeAddress(candidate)
		if client.ValidateBridge(ctx, p.NewClient(address)) {
			fmt.Fprintf(p.Out, "Using bridge at %s\n", address)
			return address, true
		}
	}
	return "", false
}

func promptError(err error) error {
	if err == io.EOF {
		return ErrPairingAborted
	}
	return err
}

// DefaultDeviceType names this installation to the bridge as
// huectl#<hostname>, falling back to a random suffix.
func DefaultDeviceType() string {
	return deviceType(osHostname)
}

func deviceType(hostname func() (string, error)) string {
	device, err := hostname()
	if err != nil || device == "" {
		device = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	// The bridge allows 19 characters for the device part.
	if len(device) > 19 {
		device = device[:19]
	}
	return applicationName + "#" + device
}
