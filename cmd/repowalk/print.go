package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

type digestedPath struct {
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`
}

// printMatches emits the matched paths of a union query and decides the
// exit outcome: zero matches map to ErrNoMatches (exit code 1).
func printMatches(paths []string, digests []string, cmd *cli.Command, verbose bool) error {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).FprintfFunc()

	if !cmd.Bool("quiet") {
		switch {
		case cmd.Bool("json"):
			if err := writeMatchesJSON(paths, digests, cmd); err != nil {
				return err
			}
		case cmd.Bool("tree"):
			rootLabel := "."
			if args := cmd.Args().Slice(); len(args) > 0 {
				rootLabel = args[0]
			}
			printTree(paths, rootLabel, cmd)
		default:
			for i, p := range paths {
				if digests != nil && digests[i] != "" {
					fmt.Fprintf(cmd.Writer, "%s  %s\n", p, yellow(digests[i]))
				} else {
					fmt.Fprintln(cmd.Writer, p)
				}
			}
		}
	}

	if verbose {
		cyan(cmd.ErrWriter, "Matched %d files.\n", len(paths))
	}

	if len(paths) == 0 {
		return ErrNoMatches
	}
	return nil
}

func writeMatchesJSON(paths []string, digests []string, cmd *cli.Command) error {
	enc := json.NewEncoder(cmd.Writer)
	if digests == nil {
		if paths == nil {
			paths = []string{}
		}
		return enc.Encode(paths)
	}
	entries := make([]digestedPath, len(paths))
	for i, p := range paths {
		entries[i] = digestedPath{Path: p, Digest: digests[i]}
	}
	return enc.Encode(entries)
}

// printGrouped emits the per-set results of a named query as "name: path"
// lines, sets ordered by name for stable output.
func printGrouped(matched map[string][]string, cmd *cli.Command, verbose bool) error {
	cyanKey := color.New(color.FgCyan).SprintFunc()
	cyan := color.New(color.FgCyan).FprintfFunc()

	var keys []string
	for key := range matched {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0
	for _, key := range keys {
		total += len(matched[key])
	}

	if !cmd.Bool("quiet") {
		if cmd.Bool("json") {
			if err := json.NewEncoder(cmd.Writer).Encode(matched); err != nil {
				return err
			}
		} else {
			for _, key := range keys {
				for _, p := range matched[key] {
					fmt.Fprintf(cmd.Writer, "%s: %s\n", cyanKey(key), p)
				}
			}
		}
	}

	if verbose {
		cyan(cmd.ErrWriter, "Matched %d files across %d sets.\n", total, len(keys))
	}

	if total == 0 {
		return ErrNoMatches
	}
	return nil
}
