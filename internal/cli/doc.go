// Package cli holds the terminal presentation used by the scsm commands.
//
// Most output is a stream of status lines in the form
//
//	[ ------ ]
//	[ Name   ] - hl2dm
//	[ App ID ] - 232370
//	[ Status ] - Starting
//
// written by Printer. Titles are coloured when the writer is a terminal.
// Tables (list, status) use go-pretty, long running steps show a spinner
// and interactive questions go through Prompter, which uses readline on a
// terminal and a plain line reader otherwise.
//
// The typed errors in this package let the cmd package map failures to
// exit codes with errors.Is.
package cli
