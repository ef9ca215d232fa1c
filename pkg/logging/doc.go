// Package logging provides subsystem-tagged structured logging for scsm.
//
// The logger is built on Go's slog package with a text handler. It is
// initialized once by the root command and is separate from the
// "[ Status ] - ..." message stream printed to the operator; log records go
// to stderr and are mostly debug-level diagnostics about external process
// invocations and filesystem side effects.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelDebug, os.Stderr)
//
//	logging.Debug("SteamCMD", "running %s", strings.Join(args, " "))
//	logging.Warn("Index", "skipping descriptor %s", path)
//	logging.Error("Tmux", err, "failed to list sessions")
//
// Every record carries a "subsystem" attribute and, for Error, an "error"
// attribute. Calls made before InitForCLI only emit warnings and errors, to
// stderr.
package logging
