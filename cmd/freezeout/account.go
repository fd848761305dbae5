package main

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/freezeout/internal/identity"
	"github.com/lox/freezeout/internal/ledger"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))

// AccountCmd reads balances straight from the ledger; the server must not
// be running against the same data path.
type AccountCmd struct {
	DataPath string   `type:"path" default:".freezeout" help:"Server data directory"`
	Players  []string `arg:"" optional:"" help:"Player ids to show (default all)"`
}

func (c *AccountCmd) Run() error {
	store, err := ledger.Open(filepath.Join(c.DataPath, ledger.DBFile))
	if err != nil {
		return err
	}
	defer store.Close()

	if len(c.Players) > 0 {
		for _, p := range c.Players {
			id, err := identity.ParsePlayerID(p)
			if err != nil {
				return err
			}
			chips, err := store.Balance(context.Background(), id)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			fmt.Printf("%s %d\n", id, chips)
		}
		return nil
	}

	accounts, err := store.Accounts()
	if err != nil {
		return err
	}
	slices.SortFunc(accounts, func(a, b ledger.Account) int {
		return strings.Compare(a.Nickname, b.Nickname)
	})
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-24s %-52s %12s", "NICKNAME", "PLAYER", "CHIPS")))
	for _, a := range accounts {
		fmt.Printf("%-24s %-52s %12d\n", a.Nickname, a.PlayerID, a.Chips)
	}
	return nil
}
