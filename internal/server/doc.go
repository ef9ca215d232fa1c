// Package server runs one game server of an installed app.
//
// A server lives in a detached multiplexer session named
// "<app_name>-<server_name>" whose working directory is the app's exec
// directory. The session is the source of truth for the server's state:
// Running is true exactly when the session exists, so servers started by
// another scsm process, or by hand with the same session name, are seen
// too.
//
// Start options from the descriptor are rendered with internal/template
// before use, so they may refer to the app and server, for example
//
//	start: [-port, '{{ env "PORT" | default "27015" }}', +exec, '{{ .ServerName }}.cfg']
//
// Stop options are sent one by one as console commands; a descriptor
// without stop options gets Ctrl-C.
package server
