package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"bookrag/internal/logging"
	"bookrag/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Console logs would draw over the alternate screen.
		cfg.Logging.Level = "error"
		qa, err := newQA(cmd.Context(), cfg, logging.New(cfg.Logging))
		if err != nil {
			return err
		}
		m := tui.New(cmd.Context(), qa, "Book QA")
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
