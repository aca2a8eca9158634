// buzzctl administers the hardware buzzers of a live quiz room: registering
// devices, binding them to teams, controlling the game phase, watching press
// notifications, and exporting binding snapshots to a git audit repository.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/config"
	"github.com/darkermage/quiz-buzzer-admin/internal/registry"
)

var (
	flagServerURL string
	flagRoomCode  string
	flagVerbose   bool

	logger *zap.Logger
	creds  *config.Credentials
)

var rootCmd = &cobra.Command{
	Use:   "buzzctl",
	Short: "Administer quiz buzzer devices",
	Long: `buzzctl talks to the quiz server's device registry. It registers and
deletes hardware buzzers, binds them to teams, shows each device's binding
state for the administered room, and keeps a git-backed audit trail of
bindings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		creds, err = config.Resolve()
		if err != nil {
			return err
		}
		if flagServerURL != "" {
			creds.ServerURL = flagServerURL
		}

		if flagVerbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// newRegistryClient builds the REST client from the resolved credentials.
func newRegistryClient() *registry.Client {
	client := registry.NewClient(creds.ServerURL)
	if creds.Token != "" {
		client.SetToken(creds.Token)
	}
	return client
}

// requireRoom ensures the --room flag was given for room-scoped commands.
func requireRoom() error {
	if flagRoomCode == "" {
		return fmt.Errorf("--room is required")
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServerURL, "server", "", "quiz server base URL (overrides stored credentials)")
	rootCmd.PersistentFlags().StringVarP(&flagRoomCode, "room", "r", "", "room code being administered")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
