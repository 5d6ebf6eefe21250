package internal

import (
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ngerakines/huectl"
	"github.com/ngerakines/huectl/client"
)

// app is everything a single invocation works with.
type app struct {
	out     io.Writer
	store   *huectl.ConfigStore
	cfg     *huectl.Configuration
	palette *huectl.Palette
	pairing *huectl.Pairing

	clientOptions []client.Option
}

// newApp loads the configuration document. With allowMissing, a missing
// document is treated as an empty one; it is created on the first save.
func newApp(cmd *cobra.Command, v *viper.Viper, allowMissing bool) (*app, error) {
	store, err := huectl.NewConfigStore(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	cfg, err := store.Load()
	if err != nil {
		var accessErr *huectl.ConfigAccessError
		if !allowMissing || !errors.As(err, &accessErr) || !isNotExist(accessErr.Err) {
			return nil, errors.Wrap(err, "could not load configuration")
		}
		cfg = &huectl.Configuration{}
	}

	palette, err := huectl.NewPalette(v.GetStringMapString("palette"))
	if err != nil {
		return nil, err
	}

	a := &app{
		out:     cmd.OutOrStdout(),
		store:   store,
		cfg:     cfg,
		palette: palette,
		clientOptions: []client.Option{
			client.WithTimeout(v.GetDuration("bridge.timeout")),
		},
	}
	a.pairing = &huectl.Pairing{
		Store:       store,
		Prompter:    huectl.NewConsolePrompter(cmd.InOrStdin(), a.out),
		Out:         a.out,
		NewClient:   a.newClient,
		Discoverer:  client.NewDiscoverer(v.GetDuration("discovery.timeout"), v.GetBool("discovery.cloud")),
		DeviceType:  v.GetString("bridge.devicetype"),
		MaxAttempts: v.GetInt("pairing.max_attempts"),
	}
	return a, nil
}

func (a *app) newClient(address string) client.BridgeClient {
	return client.New(address, a.clientOptions...)
}

// bridge returns a client for the configured bridge and user.
func (a *app) bridge() client.BridgeClient {
	return client.NewWithUser(a.cfg.BridgeURL, a.cfg.User, a.clientOptions...)
}

// bridgeFailure turns an error item returned in place of data into the
// same message a failed state change produces.
func bridgeFailure(err error) error {
	if bridgeErr, ok := errors.Cause(err).(*client.BridgeError); ok {
		return &huectl.OperationError{Description: bridgeErr.Description}
	}
	return err
}
