// The hashtable command runs a YAML script of hash table
// operations and prints the result of each one.
//
// usage: hashtable -script <file> [-v] [-dump]
//
// See package script for the script format.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	plog "github.com/phuslu/log"

	"github.com/rogpeppe/hashtable/hashtable"
	"github.com/rogpeppe/hashtable/script"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("hashtable", flag.ContinueOnError)
	flags.SetOutput(stderr)
	scriptPath := flags.String("script", "", "path of the YAML script to run")
	verbose := flags.Bool("v", false, "log every applied operation")
	dump := flags.Bool("dump", false, "print the table's buckets after running the script")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	level := plog.InfoLevel
	if *verbose {
		level = plog.DebugLevel
	}
	log := plog.Logger{
		Level:      level,
		TimeField:  "time",
		TimeFormat: "15:04:05",
		Writer:     &plog.IOWriter{Writer: stderr},
	}

	if *scriptPath == "" {
		log.Error().Msg("no script specified; use -script")
		flags.Usage()
		return 2
	}
	f, err := os.Open(*scriptPath)
	if err != nil {
		log.Error().Err(err).Msg("opening script")
		return 1
	}
	defer f.Close()

	s, err := script.Parse(f)
	if err != nil {
		log.Error().Err(err).Str("script", *scriptPath).Msg("parsing script")
		return 1
	}

	tab := hashtable.New[string, string]()
	results, err := script.Run(s, tab, log)
	for _, r := range results {
		fmt.Fprintln(stdout, r)
	}
	if err != nil {
		log.Error().Err(err).Msg("running script")
		return 1
	}
	if *dump {
		fmt.Fprint(stdout, tab)
	}
	log.Info().
		Str("ops", humanize.Comma(int64(len(results)))).
		Str("size", humanize.Comma(int64(tab.Len()))).
		Str("capacity", humanize.Comma(int64(tab.Capacity()))).
		Msg("done")
	return 0
}
