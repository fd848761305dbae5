package main

import (
	"fmt"

	"github.com/lox/freezeout/internal/fileutil"
	"github.com/lox/freezeout/internal/identity"
)

// KeygenCmd prints a new mnemonic and the player id it derives.
type KeygenCmd struct {
	Output string `short:"o" type:"path" help:"Write the phrase to this file instead of stdout"`
}

func (c *KeygenCmd) Run() error {
	key, err := identity.Generate()
	if err != nil {
		return err
	}
	if c.Output != "" {
		if err := fileutil.WriteFileAtomic(c.Output, []byte(key.Phrase()+"\n"), 0o600); err != nil {
			return err
		}
		fmt.Printf("Wrote phrase to %s\n", c.Output)
	} else {
		fmt.Printf("Phrase:    %s\n", key.Phrase())
	}
	fmt.Printf("Player ID: %s\n", key.PlayerID())
	return nil
}
