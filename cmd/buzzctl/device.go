package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/darkermage/quiz-buzzer-admin/internal/reconcile"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

var (
	flagButtonID   string
	flagDeviceName string
)

var registerCmd = &cobra.Command{
	Use:   "register <mac-address>",
	Short: "Register a hardware buzzer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newRegistryClient()
		device, err := client.Register(cmd.Context(), args[0], flagButtonID, flagDeviceName)
		if err != nil {
			return err
		}

		fmt.Printf("Registered %s", device.MACAddress)
		if device.Name != "" {
			fmt.Printf(" (%s)", device.Name)
		}
		fmt.Println()
		return nil
	},
}

var assignCmd = &cobra.Command{
	Use:   "assign <mac-address> <team-id>",
	Short: "Bind a buzzer to a team in the administered room",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoom(); err != nil {
			return err
		}

		client := newRegistryClient()
		device, err := client.Assign(cmd.Context(), args[0], flagRoomCode, args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Bound %s to team %s in room %s\n", device.MACAddress, device.TeamID, device.RoomCode)
		return nil
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <mac-address>",
	Short: "Remove a buzzer's team binding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newRegistryClient()
		if err := client.Unassign(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Unbound %s\n", registry.CanonicalMAC(args[0]))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <mac-address>",
	Short: "Delete a buzzer from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newRegistryClient()
		if err := client.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Deleted %s\n", registry.CanonicalMAC(args[0]))
		return nil
	},
}

var pressCmd = &cobra.Command{
	Use:   "press <mac-address>",
	Short: "Fire a test press for a buzzer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newRegistryClient()
		result, err := client.Press(cmd.Context(), args[0], flagButtonID)
		if err != nil {
			return err
		}

		if result.Processed {
			fmt.Println("Press processed")
		} else {
			fmt.Printf("Press accepted but not processed: %s\n", result.Message)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all buzzers with their binding state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoom(); err != nil {
			return err
		}

		entries, err := fetchAndReconcile(cmd.Context())
		if err != nil {
			return err
		}
		printEntries(entries)
		return nil
	},
}

// fetchAndReconcile pulls the inventory and the room's teams and classifies
// every device. The team set comes from the room-scoped device records:
// without a live feed connection the denormalized team names are the only
// team information the REST surface offers, so resolved names may fall back
// to the stored snapshot.
func fetchAndReconcile(ctx context.Context) ([]reconcile.Entry, error) {
	client := newRegistryClient()

	devices, err := client.List(ctx)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]registry.Team)
	roomDevices, err := client.ListByRoom(ctx, flagRoomCode)
	if err != nil {
		return nil, err
	}
	for _, d := range roomDevices {
		if d.TeamID != "" && d.TeamName != "" {
			teams[d.TeamID] = registry.Team{ID: d.TeamID, Name: d.TeamName}
		}
	}

	return reconcile.Reconcile(devices, flagRoomCode, teams), nil
}

func printEntries(entries []reconcile.Entry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "MAC\tNAME\tSTATE\tTEAM\tPRESSES\tLAST PRESS")

	for _, e := range entries {
		d := e.Device
		name := d.Name
		if name == "" {
			name = "-"
		}

		lastPress := "-"
		if d.LastPress != nil {
			lastPress = d.LastPress.Local().Format(time.RFC3339)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			registry.CanonicalMAC(d.MACAddress), name, bindingLabel(e), teamLabel(e), d.PressCount, lastPress)
	}
	w.Flush()
}

func bindingLabel(e reconcile.Entry) string {
	switch e.Binding {
	case reconcile.BoundHere:
		return "bound"
	case reconcile.BoundHereStale:
		return "bound (stale team)"
	case reconcile.BoundElsewhere:
		return fmt.Sprintf("other room (%s)", e.Device.RoomCode)
	default:
		return "unbound"
	}
}

func teamLabel(e reconcile.Entry) string {
	if e.TeamName == "" {
		return "-"
	}
	return e.TeamName
}

func init() {
	registerCmd.Flags().StringVar(&flagButtonID, "button-id", "", `button number on the device (default "1")`)
	registerCmd.Flags().StringVar(&flagDeviceName, "name", "", "display label for the device")
	pressCmd.Flags().StringVar(&flagButtonID, "button-id", "", "button number on the device")

	rootCmd.AddCommand(registerCmd, assignCmd, unassignCmd, deleteCmd, pressCmd, listCmd)
}
