package equipment

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/paularlott/cli"
	"golang.org/x/term"

	"github.com/equipctl/equipctl/internal/client"
	"github.com/equipctl/equipctl/internal/config"
	"github.com/equipctl/equipctl/internal/log"
	"github.com/equipctl/equipctl/internal/model"
	"github.com/equipctl/equipctl/internal/worker"
)

// Commands returns the equipment management commands
func Commands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
		addCommand(),
		deleteCommand(),
		watchCommand(),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List equipment records",
		Description: "Fetch and display all equipment records from the REST endpoint",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			items, err := c.List(ctx)
			if err != nil {
				return err
			}

			printEquipment(items)
			return nil
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Register a new equipment record",
		Description: "Create an equipment record. All four fields are required.",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:     "nombre",
				Usage:    "Equipment name",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tipo",
				Usage:    "Equipment type",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "ubicacion",
				Usage:    "Physical location",
				Required: true,
			},
			&cli.StringFlag{
				Name:         "estado",
				Usage:        "Status: Activo, Inactivo or Mantenimiento",
				DefaultValue: model.StatusActive,
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			draft := model.Draft{
				Name:     strings.TrimSpace(cmd.GetString("nombre")),
				Type:     strings.TrimSpace(cmd.GetString("tipo")),
				Location: strings.TrimSpace(cmd.GetString("ubicacion")),
				Status:   strings.TrimSpace(cmd.GetString("estado")),
			}

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			msg, err := c.Create(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Println(msg)

			// Reload so the output reflects the record just created
			items, err := c.List(ctx)
			if err != nil {
				return err
			}
			printEquipment(items)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete an equipment record",
		Description: "Delete an equipment record by id, with confirmation",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: append(config.GetFlags(),
			&cli.BoolFlag{
				Name:         "yes",
				Aliases:      []string{"y"},
				Usage:        "Skip the confirmation prompt",
				DefaultValue: false,
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}

			id := cmd.GetStringArg("id")

			if !cmd.GetBool("yes") && !confirmDelete(id) {
				fmt.Println("Eliminación cancelada")
				return nil
			}

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			msg, err := c.Remove(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(msg)

			// Reload so the output reflects the deletion
			items, err := c.List(ctx)
			if err != nil {
				return err
			}
			printEquipment(items)
			return nil
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Usage:       "Watch the equipment list",
		Description: "Periodically refresh and display the equipment list until interrupted",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:         "interval",
				Usage:        "Refresh interval (e.g. 30s, 1m)",
				DefaultValue: config.DefaultRefreshInterval.String(),
				EnvVars:      []string{"EQUIPCTL_REFRESH_INTERVAL"},
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			if v := cmd.GetString("interval"); v != "" {
				d, err := time.ParseDuration(v)
				if err != nil {
					return fmt.Errorf("invalid interval %q: %w", v, err)
				}
				cfg.RefreshInterval = d
			}

			c := client.New(cfg.BaseURL, cfg.RequestTimeout)
			refresher := worker.NewRefresher(c, cfg.RefreshInterval, func(items []model.Equipment, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
					return
				}
				fmt.Printf("--- %d equipos ---\n", len(items))
				printEquipment(items)
			})

			if err := refresher.Start(ctx); err != nil {
				return err
			}

			log.Info("Watching equipment list", "interval", cfg.RefreshInterval.String())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			refresher.Stop()
			return nil
		},
	}
}

// confirmDelete prompts on the terminal before a destructive action.
// Returns false when stdin is not a terminal so scripted runs never
// delete without --yes.
func confirmDelete(id string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "stdin is not a terminal, use --yes to confirm")
		return false
	}

	fmt.Printf("¿Eliminar equipo %s? [y/N]: ", id)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printEquipment(items []model.Equipment) {
	if len(items) == 0 {
		fmt.Println("No hay equipos registrados")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOMBRE\tTIPO\tUBICACION\tESTADO")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Type, item.Location, item.Status)
	}
	w.Flush()
}
