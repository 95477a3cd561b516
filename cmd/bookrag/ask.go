package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bookrag/internal/logging"
	"bookrag/internal/service"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and print its sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		qa, err := newQA(cmd.Context(), cfg, logging.New(cfg.Logging))
		if err != nil {
			return err
		}

		answer, err := qa.Ask(cmd.Context(), strings.Join(args, " "))
		if errors.Is(err, service.ErrNoContext) {
			fmt.Fprintln(cmd.OutOrStdout(), "No context found.")
			return nil
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, answer.Text)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, s := range answer.Sources {
			fmt.Fprintf(out, "  %s | %s\n", s.Volume, s.Chapter)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
