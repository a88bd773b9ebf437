// Package cli implements the league-calendar command line.
//
// Every subcommand loads the JSON settings file named by --config, builds a
// pipeline.Runner and performs exactly one run: matches and events write a
// calendar, merge unions existing calendars, teams prints the roster index
// and history lists archived runs. Paths starting with gs:// are read from
// and written to Google Cloud Storage.
package cli
