package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/darkermage/quiz-buzzer-admin/internal/gitops"
)

var (
	flagRepoPath string
	flagInitRepo bool
	flagLogCount int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot device bindings into the git audit repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireRoom(); err != nil {
			return err
		}

		if flagInitRepo {
			if _, err := os.Stat(filepath.Join(flagRepoPath, ".git")); os.IsNotExist(err) {
				if err := os.MkdirAll(flagRepoPath, 0755); err != nil {
					return fmt.Errorf("failed to create repository directory: %w", err)
				}
				if _, err := gitops.InitRepository(flagRepoPath); err != nil {
					return err
				}
			}
		}

		entries, err := fetchAndReconcile(cmd.Context())
		if err != nil {
			return err
		}

		exporter, err := gitops.NewExporter(flagRepoPath, logger)
		if err != nil {
			return err
		}

		result, err := exporter.Export(creds.ServerURL, flagRoomCode, entries)
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d device(s), commit %s\n", result.DeviceCount, result.CommitHash)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent snapshot commits from the audit repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := gitops.OpenRepository(flagRepoPath)
		if err != nil {
			return err
		}

		commits, err := repo.GetLog(flagLogCount)
		if err != nil {
			return err
		}

		for _, c := range commits {
			fmt.Printf("%s  %s  %s\n", c.Hash.String()[:8], c.Author.When.Format("2006-01-02 15:04"), c.Message)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagRepoPath, "repo", ".", "path to the audit repository")
	exportCmd.Flags().BoolVar(&flagInitRepo, "init", false, "initialize the repository if it does not exist")
	historyCmd.Flags().StringVar(&flagRepoPath, "repo", ".", "path to the audit repository")
	historyCmd.Flags().IntVar(&flagLogCount, "n", 10, "number of commits to show")

	rootCmd.AddCommand(exportCmd, historyCmd)
}
