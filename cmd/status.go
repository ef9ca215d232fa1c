package cmd

import (
	"fmt"

	"scsm/internal/cli"
	"scsm/internal/server"
	"scsm/pkg/logging"

	"github.com/spf13/cobra"
)

type serverStatus struct {
	Server    string        `json:"server"`
	App       string        `json:"app"`
	AppID     int           `json:"app_id"`
	Session   string        `json:"session"`
	Installed bool          `json:"installed"`
	Running   bool          `json:"running"`
	Stats     *server.Stats `json:"stats,omitempty"`
}

func (s serverStatus) state() string {
	switch {
	case !s.Installed:
		return "Not installed"
	case s.Running:
		return "Running"
	default:
		return "Stopped"
	}
}

func newStatusCmd() *cobra.Command {
	var (
		output outputFlag
		wide   bool
	)
	cmd := &cobra.Command{
		Use:   "status [apps...]",
		Short: "Show whether servers are running",
		Long: `Shows the state of each server. --wide adds the PID, CPU and memory use
and uptime of running servers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := output.validate(); err != nil {
				return err
			}
			env := getEnvironment(cmd)
			ctx := cmd.Context()

			tokens, err := env.expandServers(ctx, args)
			if err != nil {
				return err
			}

			var statuses []serverStatus
			for _, token := range tokens {
				s, err := env.server(ctx, token)
				if err != nil {
					return err
				}
				st := serverStatus{
					Server:    s.ServerName,
					App:       s.AppName,
					AppID:     s.AppID,
					Session:   s.Session,
					Installed: s.Installed(),
					Running:   s.Running(ctx),
				}
				if wide && st.Running {
					stats, err := s.Stats(ctx)
					if err != nil {
						logging.Warn(subsystem, "stats for %s: %v", s.Session, err)
					} else {
						st.Stats = &stats
					}
				}
				statuses = append(statuses, st)
			}

			switch {
			case output.structured():
				if statuses == nil {
					statuses = []serverStatus{}
				}
				return cli.WriteStructured(env.out.Writer(), cli.OutputFormat(output.format), statuses)
			case output.table():
				renderStatusTable(env, statuses, wide)
			default:
				printStatuses(env.out, statuses)
			}
			return nil
		},
	}
	output.register(cmd)
	cmd.Flags().BoolVar(&wide, "wide", false, "Show process statistics")
	return cmd
}

func printStatuses(out *cli.Printer, statuses []serverStatus) {
	for _, st := range statuses {
		out.Info(st.Server, 0)
		if !st.Installed {
			out.Error("App not installed")
			continue
		}
		out.Status("%s", st.state())
		if st.Stats != nil {
			out.Message("PID", st.Stats.PID)
			out.Message("CPU", fmt.Sprintf("%.1f%%", st.Stats.CPUPercent))
			out.Message("Memory", formatBytes(st.Stats.RSS))
			out.Message("Uptime", st.Stats.Uptime())
		}
	}
}

func renderStatusTable(env *environment, statuses []serverStatus, wide bool) {
	headers := []string{"Server", "App", "Session", "Status"}
	if wide {
		headers = append(headers, "PID", "CPU", "Memory", "Uptime")
	}
	t := cli.NewTable(env.out.Writer(), headers...)
	for _, st := range statuses {
		cells := []interface{}{st.Server, st.App, st.Session, st.state()}
		if wide {
			if st.Stats != nil {
				cells = append(cells, st.Stats.PID, fmt.Sprintf("%.1f%%", st.Stats.CPUPercent), formatBytes(st.Stats.RSS), st.Stats.Uptime())
			} else {
				cells = append(cells, "-", "-", "-", "-")
			}
		}
		t.Append(cells...)
	}
	t.Render()
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
