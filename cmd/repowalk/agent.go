package main

import (
	"fmt"
	"io"
	"net/rpc"
	"os"

	"github.com/audivir/repowalk"
)

type RpcAgent struct{}

// runAgent starts an RPC server that listens on stdin and stdout.
// It prints a ready message just before starting the server.
func runAgent() error {
	rpc.Register(new(RpcAgent))
	conn := struct {
		io.Reader
		io.Writer
		io.Closer
	}{os.Stdin, os.Stdout, os.Stdin}
	fmt.Println(READY_MSG)
	rpc.ServeConn(conn)
	return nil
}

func (a *RpcAgent) Ping(args PingArgs, reply *PingReply) error {
	reply.Status = "OK"
	return nil
}

func (a *RpcAgent) Walk(args WalkArgs, reply *WalkReply) error {
	reply.Paths = repowalk.Globs(args.Root, args.Globs)
	return nil
}

func (a *RpcAgent) WalkMap(args WalkMapArgs, reply *WalkMapReply) error {
	reply.Matched = repowalk.GlobsMap(args.Root, args.Sets)
	return nil
}

func (a *RpcAgent) Digest(args DigestArgs, reply *DigestReply) error {
	digest, err := coreDigest(args.Root, args.RelPath, args.Limit)
	if err != nil {
		reply.Error = err.Error()
	}
	reply.Digest = digest
	return nil
}
