package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/rpc"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/audivir/repowalk"
)

type PingArgs struct{}
type PingReply struct{ Status string }

type WalkArgs struct {
	Root  string
	Globs []string
}

type WalkReply struct {
	Paths []string
}

type WalkMapArgs struct {
	Root string
	Sets map[string][]string
}

type WalkMapReply struct {
	Matched map[string][]string
}

type DigestArgs struct {
	Root    string
	RelPath string
	Limit   int64
}

type DigestReply struct {
	Digest string
	Error  string
}

type RepoNode interface {
	Walk(globs []string) ([]string, error)
	WalkMap(sets map[string][]string) (map[string][]string, error)
	Digest(relPath string, limit int64) (string, error)
	Close() error
}

// createNode creates a LocalNode or RemoteNode depending on the path string.
// For remote paths, it creates a RemoteNode using the provided agent binary
// and sudo flag.
func createNode(ctx context.Context, pathStr, agentBin string, useSudo bool, verbose bool) (RepoNode, error) {
	if strings.Contains(pathStr, ":") && !filepath.IsAbs(pathStr) {
		parts := strings.SplitN(pathStr, ":", 2)
		host, rPath := parts[0], parts[1]
		if verbose {
			fmt.Fprintf(os.Stderr, "Connecting to %s via SSH...\n", host)
		}
		return NewRemoteNode(ctx, host, rPath, agentBin, useSudo)
	}
	absPath, err := filepath.Abs(pathStr)
	if err != nil {
		return nil, err
	}
	return &LocalNode{root: absPath}, nil
}

type LocalNode struct{ root string }

func (n *LocalNode) Walk(globs []string) ([]string, error) {
	return repowalk.Globs(n.root, globs), nil
}
func (n *LocalNode) WalkMap(sets map[string][]string) (map[string][]string, error) {
	return repowalk.GlobsMap(n.root, sets), nil
}
func (n *LocalNode) Digest(relPath string, limit int64) (string, error) {
	return coreDigest(n.root, relPath, limit)
}
func (n *LocalNode) Close() error { return nil }

type RemoteNode struct {
	cmd    *exec.Cmd
	client *rpc.Client
	root   string
}

// NewRemoteNode creates a new RemoteNode instance.
// If sudo is required, user input is forwarded as the prompt is intercepted
// from stderr. The creation is successful when the server responds with a
// ready message.
func NewRemoteNode(ctx context.Context, host, root, agentBin string, useSudo bool) (*RemoteNode, error) {
	if agentBin == "" {
		agentBin = BIN_NAME
	}

	var sshArgs []string
	sshArgs = append(sshArgs, host)

	// format the prompt so we can intercept it from stderr
	promptMarker := fmt.Sprintf("[sudo] password for %s on %s: ", filepath.Base(agentBin), host)

	if useSudo {
		quotedPrompt := fmt.Sprintf("'%s'", promptMarker)
		sshArgs = append(sshArgs, "sudo", "-S", "-p", quotedPrompt, agentBin, "--agent")
	} else {
		sshArgs = append(sshArgs, agentBin, "--agent")
	}

	// SSH can prompt the user for passwords/2FA via TTY
	cmd := exec.CommandContext(ctx, "ssh", sshArgs...)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ssh command: %w", err)
	}

	var stderrBuf bytes.Buffer

	// monitor stderr to echo SSH output and intercept sudo prompts
	go func() {
		buf := make([]byte, 1)
		var window []byte
		markerBytes := []byte(promptMarker)
		for {
			n, err := stderrPipe.Read(buf)
			if n > 0 {
				b := buf[0]
				os.Stderr.Write([]byte{b})
				stderrBuf.WriteByte(b)

				window = append(window, b)
				if len(window) > len(markerBytes) {
					window = window[1:]
				}

				if string(window) == promptMarker {
					pass := readPassword()
					io.WriteString(stdinPipe, pass+"\n")
					window = nil // reset so we don't trigger again on accident
				}
			}
			if err != nil {
				break
			}
		}
	}()

	// wait for the agent ready message
	stdoutReader := bufio.NewReader(stdoutPipe)
	readyCh := make(chan error, 1)
	go func() {
		for {
			line, err := stdoutReader.ReadString('\n')
			if err != nil {
				readyCh <- fmt.Errorf("disconnected before agent ready: %w", err)
				return
			}
			if strings.TrimSpace(line) == READY_MSG {
				readyCh <- nil
				return
			}
			// ignore everything else
		}
	}()

	select {
	case err := <-readyCh:
		if err != nil {
			cmd.Wait()
			errMsg := strings.TrimSpace(stderrBuf.String())
			if errMsg != "" {
				return nil, fmt.Errorf("remote agent failed to start: %s | %v", errMsg, err)
			}
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// hand over the rest of the clean stream to the RPC Client
	conn := struct {
		io.Reader
		io.Writer
		io.Closer
	}{stdoutReader, stdinPipe, stdinPipe}

	client := rpc.NewClient(conn)

	reply := &PingReply{}
	if err := client.Call("RpcAgent.Ping", PingArgs{}, reply); err != nil {
		client.Close()
		return nil, fmt.Errorf("remote agent RPC ping failed: %w", err)
	}

	return &RemoteNode{cmd: cmd, client: client, root: root}, nil
}

func (n *RemoteNode) Walk(globs []string) ([]string, error) {
	reply := &WalkReply{}
	err := n.client.Call("RpcAgent.Walk", WalkArgs{Root: n.root, Globs: globs}, reply)
	return reply.Paths, err
}

func (n *RemoteNode) WalkMap(sets map[string][]string) (map[string][]string, error) {
	reply := &WalkMapReply{}
	err := n.client.Call("RpcAgent.WalkMap", WalkMapArgs{Root: n.root, Sets: sets}, reply)
	return reply.Matched, err
}

func (n *RemoteNode) Digest(relPath string, limit int64) (string, error) {
	reply := &DigestReply{}
	err := n.client.Call("RpcAgent.Digest", DigestArgs{Root: n.root, RelPath: relPath, Limit: limit}, reply)
	if reply.Error != "" {
		return "", errors.New(reply.Error)
	}
	return reply.Digest, err
}

func (n *RemoteNode) Close() error {
	n.client.Close()
	return n.cmd.Wait()
}

// readPassword reads a password from the terminal with echo disabled.
func readPassword() string {
	// file descriptor of the terminal
	fd := int(os.Stdin.Fd())

	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return ""
	}

	// keep the terminal clean
	fmt.Fprintln(os.Stderr)

	return string(bytePassword)
}
