// Package steamcmd drives the SteamCMD content tool.
//
// SteamCMD is scripted entirely through "+command" arguments and reports
// progress as free text on stdout. This package builds those argument
// lists, runs the tool and picks the few lines that matter out of its
// output:
//
//   - Filter keeps the first line carrying a success or error marker.
//   - Info isolates the app's KeyValues block from app_info_print.
//   - License and CachedLogin look for a single literal marker.
//
// The executable is the system "steamcmd" when one is on PATH. Otherwise a
// private copy is used (and installed on demand) under the scsm data
// directory. Only the private copy can be removed.
package steamcmd
