package monitor

import (
	"context"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"scsm/pkg/logging"
)

// sdNotify is a variable to allow mocking in tests
var sdNotify = daemon.SdNotify

// sdWatchdogEnabled is a variable to allow mocking in tests
var sdWatchdogEnabled = daemon.SdWatchdogEnabled

type notifier struct {
	enabled bool
}

func (n *notifier) send(state string) {
	if !n.enabled {
		return
	}
	sent, err := sdNotify(false, state)
	if err != nil {
		logging.Warn(subsystem, "sd_notify %q: %v", state, err)
		return
	}
	if !sent {
		logging.Debug(subsystem, "sd_notify %q: NOTIFY_SOCKET not set", state)
	}
}

func (n *notifier) ready() { n.send(daemon.SdNotifyReady) }
func (n *notifier) stopping() { n.send(daemon.SdNotifyStopping) }
func (n *notifier) status(s string) { n.send("STATUS=" + s) }

// watchdogInterval is half the systemd WatchdogSec, or 0 when the
// watchdog is off.
func (n *notifier) watchdogInterval() time.Duration {
	if !n.enabled {
		return 0
	}
	interval, err := sdWatchdogEnabled(false)
	if err != nil {
		logging.Warn(subsystem, "reading watchdog settings: %v", err)
		return 0
	}
	return interval / 2
}

func (n *notifier) watchdog(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n.send(daemon.SdNotifyWatchdog)
		}
	}
}
