package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"microcasa/internal/session"
	"microcasa/internal/telemetry"
	"microcasa/internal/tui"
)

var (
	presentPace  time.Duration
	presentStyle string
)

var presentCmd = &cobra.Command{
	Use:   "present",
	Short: "Present the deck in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := loadResearch(contentPath)
		if err != nil {
			return err
		}

		sessions := session.NewManager(session.Options{
			Slides: tui.Markdown{Data: data}.Slides,
			Logger: logger,
		})
		s, err := sessions.Create()
		if err != nil {
			return err
		}

		model := tui.New(s, tui.Options{Style: presentStyle, Pace: presentPace})
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	presentCmd.Flags().DurationVar(&presentPace, "pace", telemetry.DefaultBurstPace, "Delay between revealed burst readings")
	presentCmd.Flags().StringVar(&presentStyle, "style", "", "Markdown style (dark, light, notty); detected when empty")
}
