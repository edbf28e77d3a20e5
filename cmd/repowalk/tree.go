package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	FALLBACK_TERMINAL_WIDTH = 80
	MARKER                  = "├── "
	LAST_MARKER             = "└── "
	CHILD                   = "│   "
	LAST_CHILD              = "    "
)

type TreeNode struct {
	Name     string
	IsDir    bool
	Children map[string]*TreeNode
}

type TreeLine struct {
	Ancestor string
	Marker   string
	Name     string
	Color    *color.Color
}

// getTerminalWidth returns the current terminal width or a default on error
func getTerminalWidth() int {
	// for testing purposes
	if os.Getenv("TEST_FIX_WIDTH") != "" {
		return FALLBACK_TERMINAL_WIDTH // standard width
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return FALLBACK_TERMINAL_WIDTH // fallback standard width
	}
	return width
}

// truncate shortens a string to a max width, appending "…" if needed.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		return s // too narrow, messes up the output
	}
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		return string(runes[:maxLen-1]) + "…"
	}
	return s
}

// printTree aggregates the matched paths into an internal tree structure,
// maps the gnu tree connectors, and prints them.
func printTree(paths []string, rootLabel string, cmd *cli.Command) {
	root := &TreeNode{
		Name:     ".",
		IsDir:    true,
		Children: make(map[string]*TreeNode),
	}

	// build the tree; only leaves are files, every inner node is a directory
	for _, p := range paths {
		parts := strings.Split(p, "/")
		curr := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if _, ok := curr.Children[part]; !ok {
				curr.Children[part] = &TreeNode{
					Name:     part,
					IsDir:    i < len(parts)-1,
					Children: make(map[string]*TreeNode),
				}
			}
			curr = curr.Children[part]
		}
	}

	var lines []TreeLine
	generateTreeLines(root, "", &lines)

	width := getTerminalWidth()

	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintln(cmd.Writer, cyan(truncate(rootLabel, width)))

	for _, l := range lines {
		raw := l.Ancestor + l.Marker + l.Name
		if utf8.RuneCountInString(raw) > width {
			fmt.Fprintln(cmd.Writer, truncate(raw, width))
			continue
		}
		name := l.Name
		if l.Color != nil {
			name = l.Color.Sprint(name)
		}
		fmt.Fprintf(cmd.Writer, "%s%s%s\n", l.Ancestor, l.Marker, name)
	}
}

func generateTreeLines(node *TreeNode, prefix string, lines *[]TreeLine) {
	var keys []string
	for k := range node.Children {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Keep files and folders grouped alphabetically

	for i, k := range keys {
		child := node.Children[k]
		last := (i == len(keys)-1)

		marker := MARKER
		childPrefixExt := CHILD
		if last {
			marker = LAST_MARKER
			childPrefixExt = LAST_CHILD
		}

		line := TreeLine{
			Ancestor: prefix,
			Marker:   marker,
			Name:     child.Name,
		}
		if child.IsDir {
			line.Name += "/"
			line.Color = color.New(color.FgCyan)
		}

		*lines = append(*lines, line)

		generateTreeLines(child, prefix+childPrefixExt, lines)
	}
}
