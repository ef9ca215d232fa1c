package cmd

import (
	"fmt"
	"slices"

	"scsm/internal/cli"

	"github.com/spf13/cobra"
)

type appListing struct {
	Name       string   `json:"name"`
	AppID      int      `json:"app_id"`
	FullName   string   `json:"full_name"`
	Installed  bool     `json:"installed"`
	Servers    []string `json:"servers"`
	Backups    []string `json:"backups,omitempty"`
	MaxBackups *int     `json:"max_backups,omitempty"`
}

func newListCmd() *cobra.Command {
	var output outputFlag
	cmd := &cobra.Command{
		Use:   "list [all | installed | backups | apps...]",
		Short: "List installed or installable apps",
		Long: `Lists installed apps. "all" lists every app scsm knows about and
"backups" lists the backups of each app that has any, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			env := getEnvironment(cmd)
			ctx := cmd.Context()

			withBackups := slices.Equal(args, []string{"backups"})
			var (
				tokens []string
				err    error
			)
			switch {
			case slices.Equal(args, []string{"all"}):
				tokens, err = env.index.ListAll()
			case len(args) == 0:
				tokens, err = env.expandApps(ctx, []string{"installed"})
			default:
				tokens, err = env.expandApps(ctx, args)
			}
			if err != nil {
				return err
			}

			var listings []appListing
			for _, token := range tokens {
				a, err := env.app(ctx, token)
				if err != nil {
					return err
				}
				l := appListing{
					Name:      a.AppName,
					AppID:     a.AppID,
					FullName:  a.FullName,
					Installed: a.Installed(),
					Servers:   a.ServerNames,
				}
				if withBackups {
					if l.Backups, err = a.Backups(); err != nil {
						return err
					}
					max := env.cfg.General.MaxBackups
					l.MaxBackups = &max
				}
				listings = append(listings, l)
			}

			switch {
			case output.structured():
				if listings == nil {
					listings = []appListing{}
				}
				return cli.WriteStructured(env.out.Writer(), cli.OutputFormat(output.format), listings)
			case output.table():
				renderListTable(env, listings, withBackups)
			default:
				printListings(env.out, listings)
			}
			return nil
		},
	}
	output.register(cmd)
	return cmd
}

func printListings(out *cli.Printer, listings []appListing) {
	for _, l := range listings {
		out.Separator()
		out.Message("F-Name", l.FullName)
		out.Message("Name", l.Name)
		out.Message("App ID", l.AppID)
		if l.Installed {
			out.Status("Installed")
		} else {
			out.Status("Not installed")
		}
		if l.MaxBackups != nil {
			out.Status("Backups (Max %d)", *l.MaxBackups)
			for i, b := range l.Backups {
				out.Message(i+1, b)
			}
		}
	}
}

func renderListTable(env *environment, listings []appListing, withBackups bool) {
	headers := []string{"Name", "App ID", "Full Name", "Status"}
	if withBackups {
		headers = append(headers, "Backups", "Latest")
	}
	t := cli.NewTable(env.out.Writer(), headers...)
	for _, l := range listings {
		status := "Not installed"
		if l.Installed {
			status = "Installed"
		}
		cells := []interface{}{l.Name, l.AppID, l.FullName, status}
		if withBackups {
			latest := "-"
			if len(l.Backups) > 0 {
				latest = l.Backups[0]
			}
			cells = append(cells, fmt.Sprintf("%d/%d", len(l.Backups), *l.MaxBackups), latest)
		}
		t.Append(cells...)
	}
	t.Render()
}
