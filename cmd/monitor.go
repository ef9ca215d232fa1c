package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"scsm/internal/app"
	"scsm/internal/monitor"
	"scsm/internal/server"

	"github.com/spf13/cobra"
)

func newMonitorCmd() *cobra.Command {
	var restart, notify bool
	cmd := &cobra.Command{
		Use:   "monitor [apps...]",
		Short: "Watch servers and restart them when they stop",
		Long: `Polls the sessions of the given servers (every server when none are
named) and reports when they start or stop. With --restart a stopped
server is started again, at most 3 times in 30 seconds.

--notify sends systemd READY, STATUS and WATCHDOG notifications, for
running under a Type=notify unit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := getEnvironment(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if len(args) == 0 {
				args = []string{"all"}
			}
			tokens, err := env.expandServers(ctx, args)
			if err != nil {
				return err
			}
			servers := make(map[string]monitor.Server, len(tokens))
			sessionTokens := make(map[string]string, len(tokens))
			for _, token := range tokens {
				s, err := env.server(ctx, token)
				if err != nil {
					return err
				}
				if !s.Installed() {
					continue
				}
				servers[s.Session] = s
				sessionTokens[s.Session] = token
			}

			m := monitor.New(servers, monitor.Options{
				Restart: restart,
				Notify:  notify,
				Index:   env.index,
				OnEvent: env.monitorEvent,
				Reload: func(ctx context.Context, session string) (monitor.Server, error) {
					return env.reloadServer(ctx, sessionTokens[session])
				},
			})
			env.out.Separator()
			env.out.Status("Monitoring %d servers", len(servers))
			if err := m.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&restart, "restart", "r", false, "Restart servers that stop")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send systemd notifications")
	return cmd
}

func (e *environment) monitorEvent(ev monitor.Event) {
	e.out.Info(ev.Session, 0)
	switch ev.Kind {
	case monitor.EventRunning:
		e.out.Status("Running")
	case monitor.EventStopped:
		e.out.Error("Stopped")
	case monitor.EventRestarting:
		e.out.Status("Restarting")
	case monitor.EventRestartFailed:
		e.out.Error("Restart failed: %v", ev.Err)
	case monitor.EventRestartLimit:
		e.out.Error("Restarted %d times in %d seconds", monitor.DefaultMaxRestarts, int(monitor.DefaultWindow.Seconds()))
		e.out.Error("Not restarting")
	}
}


// reloadServer resolves token again without printing lookup errors.
func (e *environment) reloadServer(ctx context.Context, token string) (monitor.Server, error) {
	a, err := app.New(ctx, token, e.appOptions())
	if err != nil {
		return nil, err
	}
	if a.ServerName == "" {
		return nil, fmt.Errorf("%s is no longer a server", token)
	}
	s, err := server.New(a, e.mux, server.WithIO(e.stdin, e.out.Writer(), e.stderr))
	if err != nil {
		return nil, err
	}
	return s, nil
}
