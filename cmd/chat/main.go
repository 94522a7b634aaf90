package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/josinaldojr/assistant-rag/internal/chat"
	"github.com/josinaldojr/assistant-rag/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chat",
		Short:        "Terminal chat with the assistant backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := chat.LoadConfig(path)
			if err != nil {
				return err
			}
			if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
				cfg.BackendURL = backend
			}

			c := client.New(cfg.BackendURL, cfg.Timeout())
			p := tea.NewProgram(chat.New(c, cfg.Timeout()), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running chat: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("config", os.Getenv("CHAT_CONFIG"), "YAML config file (backend_url, timeout_secs)")
	cmd.Flags().String("backend", "", "backend base URL, overrides the config file")
	return cmd
}
