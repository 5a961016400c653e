package ui

import (
	"context"

	"github.com/paularlott/cli"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/config"
	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/tui"
)

// Command returns the interactive terminal UI command
func Command() *cli.Command {
	return &cli.Command{
		Name:        "ui",
		Usage:       "Interactive equipment manager",
		Description: "Open the full-screen terminal UI for listing, registering and deleting equipment",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			log.Debug("Starting terminal UI", "endpoint", cfg.BaseURL)

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			return tui.Run(c)
		},
	}
}
