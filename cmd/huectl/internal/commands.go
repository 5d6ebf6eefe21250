package internal

import (
	"fmt"
	"io/fs"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ngerakines/huectl"
	"github.com/ngerakines/huectl/client"
)

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the lights known to the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, v, false)
			if err != nil {
				return err
			}
			if err := a.pairing.Ensure(cmd.Context(), a.cfg); err != nil {
				return err
			}

			lights, err := a.bridge().Lights(cmd.Context())
			if err != nil {
				return bridgeFailure(errors.Wrap(err, "could not list lights"))
			}
			for _, light := range sortedLights(lights) {
				status := "off"
				if light.State.On {
					status = "on"
				}
				fmt.Fprintf(a.out, "Device %s (%s)\n", light.ID, status)
				fmt.Fprintf(a.out, "# Name: %s\n", light.ProductName)
				fmt.Fprintf(a.out, "# Brightness: %d\n", light.State.Bri)
			}
			return nil
		},
	}
}

func newSetupCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Find the bridge and create a user on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, v, true)
			if err != nil {
				return err
			}
			return a.pairing.Setup(cmd.Context(), a.cfg)
		},
	}
}

func newDiscoverCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Search the local network for bridges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			discoverer := client.NewDiscoverer(v.GetDuration("discovery.timeout"), v.GetBool("discovery.cloud"))
			bridges, err := discoverer.Discover(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "discovery failed")
			}
			if len(bridges) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No bridges found.")
				return nil
			}
			for _, bridge := range bridges {
				fmt.Fprintln(cmd.OutOrStdout(), bridge)
			}
			return nil
		},
	}
}

// runDevice handles "<device-id> <command> [args...]".
func runDevice(cmd *cobra.Command, v *viper.Viper, args []string) error {
	device := args[0]
	if err := huectl.ValidateDevice(device); err != nil {
		return err
	}

	a, err := newApp(cmd, v, false)
	if err != nil {
		return err
	}

	action, err := huectl.ParseAction(args[1:], a.palette)
	if err != nil {
		return err
	}

	if err := a.pairing.Ensure(cmd.Context(), a.cfg); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"device": device,
		"action": action.String(),
	}).Info("Applying action")
	return huectl.Execute(cmd.Context(), a.bridge(), device, action)
}

func sortedLights(lights map[string]*client.Light) []*client.Light {
	sorted := make([]*client.Light, 0, len(lights))
	for _, light := range lights {
		sorted = append(sorted, light)
	}
	sort.Slice(sorted, func(i, j int) bool {
		a, errA := strconv.Atoi(sorted[i].ID)
		b, errB := strconv.Atoi(sorted[j].ID)
		if errA != nil || errB != nil {
			return sorted[i].ID < sorted[j].ID
		}
		return a < b
	})
	return sorted
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
