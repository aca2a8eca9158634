package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/darkermage/quiz-buzzer-admin/internal/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store quiz server credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Printf("Server URL [%s]: ", creds.ServerURL)
		serverURL, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read server URL: %w", err)
		}
		serverURL = strings.TrimSpace(serverURL)
		if serverURL == "" {
			serverURL = creds.ServerURL
		}

		fmt.Print("Admin token (empty for none): ")
		var token string
		if term.IsTerminal(int(os.Stdin.Fd())) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token = strings.TrimSpace(string(raw))
		} else {
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token = strings.TrimSpace(line)
		}

		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}

		store := config.NewCredentialStore(path)
		if err := store.Save(config.Credentials{ServerURL: serverURL, Token: token}); err != nil {
			return err
		}

		fmt.Printf("Credentials saved to %s\n", path)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete stored quiz server credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}

		store := config.NewCredentialStore(path)
		if !store.Exists() {
			fmt.Println("No stored credentials")
			return nil
		}

		if err := store.Delete(); err != nil {
			return fmt.Errorf("failed to delete credentials: %w", err)
		}

		fmt.Println("Credentials deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
