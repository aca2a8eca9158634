package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/darkermage/quiz-buzzer-admin/internal/events"
	"github.com/darkermage/quiz-buzzer-admin/internal/feed"
)

var phaseCmd = &cobra.Command{
	Use:   "phase <lobby|started|active|finished>",
	Short: "Transition the room's game phase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoom(); err != nil {
			return err
		}

		bus := events.NewBus()
		defer bus.Close()

		roomFeed, err := feed.Dial(cmd.Context(), creds.ServerURL, flagRoomCode, bus, logger)
		if err != nil {
			return err
		}
		defer roomFeed.Close()

		if err := roomFeed.SetPhase(args[0]); err != nil {
			return err
		}

		fmt.Printf("Room %s -> %s\n", flagRoomCode, args[0])
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch hardware press notifications for the administered room",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoom(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		bus := events.NewBus()
		defer bus.Close()

		roomFeed, err := feed.Dial(ctx, creds.ServerURL, flagRoomCode, bus, logger)
		if err != nil {
			return err
		}
		defer roomFeed.Close()

		token, presses := bus.Subscribe()
		defer bus.Unsubscribe(token)

		feedErr := make(chan error, 1)
		go func() {
			feedErr <- roomFeed.Run(ctx)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

		fmt.Printf("Watching room %s (Ctrl+C to stop)\n", flagRoomCode)
		for {
			select {
			case ev := <-presses:
				fmt.Printf("[%s] %s buzzed in\n", time.Now().Format("15:04:05"), ev.TeamName)
			case err := <-feedErr:
				return err
			case <-quit:
				logger.Info("watch stopped", zap.String("room", flagRoomCode))
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(phaseCmd, watchCmd)
}
