package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

const (
	BIN_NAME  = "repowalk"
	VERSION   = "0.1.0"
	READY_MSG = "__REPOWALK_AGENT_READY__"
)

var ErrNoMatches = errors.New("no files matched")

type ParsedArgs struct {
	Root        string
	Globs       []string
	Sets        map[string][]string
	AgentBin    string
	Sudo        bool
	DigestLimit int64
	Verbose     bool
}

func main() {
	app := newApp()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, ErrNoMatches) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      BIN_NAME,
		Usage:     "List the files of a repository matching glob patterns.",
		UsageText: "repowalk [options] <path|host:/path> [glob ...]",
		Version:   VERSION,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "set", Aliases: []string{"s"}, Usage: "Named pattern set as name=glob (repeatable); switches to grouped output"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w", "j"}, Value: int64(runtime.NumCPU()), Usage: "Number of parallel digest workers"},
			// output
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
			&cli.BoolFlag{Name: "tree", Aliases: []string{"t"}, Usage: "Print results as a tree"},
			// digesting
			&cli.BoolFlag{Name: "digest", Aliases: []string{"d"}, Usage: "Print a SHA256 digest next to each matched file"},
			&cli.StringFlag{Name: "digest-limit", Aliases: []string{"l"}, Usage: "Size limit above which digests are sparse (default 0 = full)", HideDefault: true, Value: "0"},
			// verbosity
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Disable all output except exit code"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}, Usage: "Print debug info"},
			&cli.BoolFlag{Name: "no-progressbar", Aliases: []string{"P"}, Usage: "Disable progress bar"},
			&cli.BoolFlag{Name: "no-color", Aliases: []string{"C"}, Usage: "Disable color output"},
			// remote
			&cli.StringFlag{Name: "remote-bin", Aliases: []string{"r"}, Usage: "Path to repowalk binary on the remote host"},
			&cli.BoolFlag{Name: "sudo", Usage: "Escalate privileges via sudo on the remote host"},
			&cli.BoolFlag{Name: "agent", Hidden: true, Usage: "Run as RPC agent over stdin/stdout"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("agent") {
				return runAgent()
			}
			parsedArgs, err := parseArgs(cmd)
			if err != nil {
				return err
			}
			return runQuery(ctx, parsedArgs, cmd)
		},
	}
}

func parseArgs(cmd *cli.Command) (*ParsedArgs, error) {
	args := cmd.Args().Slice()
	if len(args) < 1 {
		return &ParsedArgs{}, fmt.Errorf("missing repository path")
	}

	if cmd.Bool("no-color") {
		color.NoColor = true
	}

	root, globs := args[0], args[1:]

	sets := make(map[string][]string)
	for _, def := range cmd.StringSlice("set") {
		name, pattern, ok := strings.Cut(def, "=")
		if !ok || name == "" || pattern == "" {
			return &ParsedArgs{}, fmt.Errorf("invalid --set %q, expected name=glob", def)
		}
		sets[name] = append(sets[name], pattern)
	}

	if len(sets) > 0 && len(globs) > 0 {
		return &ParsedArgs{}, fmt.Errorf("use either positional globs or --set, not both")
	}
	if len(sets) == 0 && len(globs) == 0 {
		return &ParsedArgs{}, fmt.Errorf("no glob patterns given")
	}
	if len(sets) > 0 && cmd.Bool("digest") {
		return &ParsedArgs{}, fmt.Errorf("--digest cannot be combined with --set")
	}
	if len(sets) > 0 && cmd.Bool("tree") {
		return &ParsedArgs{}, fmt.Errorf("--tree cannot be combined with --set")
	}

	digestLimit, err := units.RAMInBytes(cmd.String("digest-limit"))
	if err != nil || digestLimit < 0 {
		return &ParsedArgs{}, fmt.Errorf("invalid --digest-limit")
	}

	return &ParsedArgs{
		Root:        root,
		Globs:       globs,
		Sets:        sets,
		AgentBin:    cmd.String("remote-bin"),
		Sudo:        cmd.Bool("sudo"),
		DigestLimit: digestLimit,
		Verbose:     cmd.Bool("verbose") && !cmd.Bool("quiet"),
	}, nil
}

func runQuery(ctx context.Context, args *ParsedArgs, cmd *cli.Command) error {
	node, err := createNode(ctx, args.Root, args.AgentBin, args.Sudo, args.Verbose)
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	defer node.Close()

	if len(args.Sets) > 0 {
		matched, err := node.WalkMap(args.Sets)
		if err != nil {
			return fmt.Errorf("walk error: %w", err)
		}
		return printGrouped(matched, cmd, args.Verbose)
	}

	paths, err := node.Walk(args.Globs)
	if err != nil {
		return fmt.Errorf("walk error: %w", err)
	}

	var digests []string
	if cmd.Bool("digest") {
		digests = digestAll(ctx, node, paths, args.DigestLimit, cmd)
	}

	return printMatches(paths, digests, cmd, args.Verbose)
}
