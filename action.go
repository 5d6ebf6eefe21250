package huectl

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/ngerakines/huectl/client"
)

var (
	ErrDeviceFormat   = errors.New("Wrong format for device")
	ErrMissingCommand = errors.New("missing command for device")
	ErrUnknownCommand = errors.New("unknown command for device")
)

// OperationError carries the description of an error item returned by the
// bridge for a state change.
type OperationError struct {
	Description string
}

func (e *OperationError) Error() string {
	return "Operation failed: " + e.Description
}

// Action is a single state change applied to one light.
type Action interface {
	Apply(ctx context.Context, c client.BridgeClient, device string) (client.Response, error)
	String() string
}

type powerAction struct {
	on bool
}

type brightnessAction struct {
	level int
}

type colorAction struct {
	color ColorSpec
	rgb   RGB
}

func NewPowerAction(on bool) Action {
	return &powerAction{on}
}

func NewBrightnessAction(level int) (Action, error) {
	if err := client.ValidateBrightness(level); err != nil {
		return nil, err
	}
	return &brightnessAction{level}, nil
}

// NewColorAction resolves the color against the palette right away so an
// unknown name fails before anything is sent.
func NewColorAction(color ColorSpec, palette *Palette) (Action, error) {
	rgb, err := color.Resolve(palette)
	if err != nil {
		return nil, err
	}
	return &colorAction{color, rgb}, nil
}

// ValidateDevice accepts only non-empty, all-digit ids.
func ValidateDevice(device string) error {
	if device == "" {
		return ErrDeviceFormat
	}
	for _, r := range device {
		if r < '0' || r > '9' {
			return ErrDeviceFormat
		}
	}
	return nil
}

// ParseAction turns the words following a device id into an Action:
// on, off, brightness <0-255>, color <name|random|#hex>, color <r> <g> <b>.
func ParseAction(args []string, palette *Palette) (Action, error) {
	if len(args) == 0 {
		return nil, ErrMissingCommand
	}
	switch args[0] {
	case "on":
		return NewPowerAction(true), nil
	case "off":
		return NewPowerAction(false), nil
	case "brightness":
		if len(args) != 2 {
			return nil, client.ErrBrightnessRange
		}
		level, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, errors.Wrapf(client.ErrBrightnessRange, "invalid brightness %q", args[1])
		}
		return NewBrightnessAction(level)
	case "color":
		color, err := ParseColorArgs(args[1:])
		if err != nil {
			return nil, err
		}
		return NewColorAction(color, palette)
	default:
		return nil, errors.Wrapf(ErrUnknownCommand, "%q", args[0])
	}
}

// Execute applies the action and turns an error response into an
// OperationError.
func Execute(ctx context.Context, c client.BridgeClient, device string, action Action) error {
	if err := ValidateDevice(device); err != nil {
		return err
	}
	response, err := action.Apply(ctx, c, device)
	if err != nil {
		return err
	}
	if bridgeErr := response.Err(); bridgeErr != nil {
		return &OperationError{Description: bridgeErr.Description}
	}
	return nil
}

func (a *powerAction) Apply(ctx context.Context, c client.BridgeClient, device string) (client.Response, error) {
	log.WithFields(log.Fields{
		"device": device,
		"on":     a.on,
	}).Debug("Setting power")
	return c.SetPower(ctx, device, a.on)
}

func (a *powerAction) String() string {
	if a.on {
		return "on"
	}
	return "off"
}

func (a *brightnessAction) Apply(ctx context.Context, c client.BridgeClient, device string) (client.Response, error) {
	log.WithFields(log.Fields{
		"device":     device,
		"brightness": a.level,
	}).Debug("Setting brightness")
	return c.SetBrightness(ctx, device, a.level)
}

func (a *brightnessAction) String() string {
	return fmt.Sprintf("brightness %d", a.level)
}

func (a *colorAction) Apply(ctx context.Context, c client.BridgeClient, device string) (client.Response, error) {
	xy := a.rgb.ToXY()
	log.WithFields(log.Fields{
		"device": device,
		"color":  a.color.String(),
		"r":      a.rgb.R,
		"g":      a.rgb.G,
		"b":      a.rgb.B,
		"x":      xy[0],
		"y":      xy[1],
	}).Debug("Setting color")
	return c.SetColor(ctx, device, xy)
}

func (a *colorAction) String() string {
	return fmt.Sprintf("color %s", a.color)
}
