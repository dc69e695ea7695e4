package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"errday/pkg/cli"
	"errday/pkg/config"
	"errday/pkg/database"
	"errday/pkg/ui"
	"errday/pkg/utils"
)

func main() {
	if err := cli.Execute(runTUI); err != nil {
		os.Exit(1)
	}
}

// runTUI runs the interactive interface until the user quits
func runTUI(store *database.Store, cfg config.Config, styles config.Styles) error {
	model := ui.NewModel(store, cfg, styles)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	if err := store.Save(); err != nil {
		utils.Log("Final save failed: %v", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
