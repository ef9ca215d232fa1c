// Package archive creates and extracts the tarballs scsm uses for app
// backups, plus the zip and 7z archives it may be handed.
//
// A backup is a single tar stream, optionally compressed, whose entries
// are rooted at the app name directory:
//
//	hl2dm/
//	hl2dm/srcds_run
//	hl2dm/hl2mp/cfg/server.cfg
//
// Extraction rejects entries that would land outside the destination.
package archive
