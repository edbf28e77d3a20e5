package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

func coreDigest(rootDir, relPath string, limit int64) (string, error) {
	fullPath := filepath.Join(rootDir, filepath.FromSlash(relPath))
	return computeSparseHash(fullPath, sha256.New(), limit)
}

// computeSparseHash computes a sparse hash of a file if the file size is
// greater than the limit. It reads roughly 1/3 of the file from the
// beginning, middle, and end.
func computeSparseHash(path string, h hash.Hash, limit int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	fileSize := info.Size()

	if limit <= 0 || fileSize <= limit {
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	chunkSize := limit / 3
	lastChunkSize := limit - (chunkSize * 2)

	if _, err := io.CopyN(h, f, chunkSize); err != nil {
		return "", err
	}
	if _, err := f.Seek((fileSize/2)-(chunkSize/2), io.SeekStart); err != nil {
		return "", err
	}
	if _, err := io.CopyN(h, f, chunkSize); err != nil {
		return "", err
	}
	if _, err := f.Seek(fileSize-lastChunkSize, io.SeekStart); err != nil {
		return "", err
	}
	if _, err := io.CopyN(h, f, lastChunkSize); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// digestAll computes a digest per matched path on a worker pool. The
// returned slice is aligned with paths; a file that could not be read
// yields an empty digest and a note on stderr in verbose mode.
func digestAll(ctx context.Context, node RepoNode, paths []string, limit int64, cmd *cli.Command) []string {
	digests := make([]string, len(paths))
	if len(paths) == 0 {
		return digests
	}

	jobCh := make(chan int, len(paths))
	for i := range paths {
		jobCh <- i
	}
	close(jobCh)

	progressCh := make(chan struct{}, len(paths))
	var barWg sync.WaitGroup

	if !cmd.Bool("quiet") && !cmd.Bool("no-progressbar") {
		barWg.Add(1)
		go func() {
			defer barWg.Done()
			bar := progressbar.NewOptions(len(paths),
				progressbar.OptionSetDescription("Digesting files"),
				progressbar.OptionSetWidth(15),
				progressbar.OptionSetWriter(cmd.ErrWriter),
				progressbar.OptionShowBytes(false),
			)
			for range progressCh {
				bar.Add(1)
			}
			fmt.Fprintln(cmd.ErrWriter)
		}()
	} else {
		go func() {
			for range progressCh {
			}
		}()
	}

	var wg sync.WaitGroup
	workers := int(cmd.Int("workers"))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-jobCh:
					if !ok {
						return
					}
					digest, err := node.Digest(paths[i], limit)
					if err != nil && cmd.Bool("verbose") {
						fmt.Fprintf(cmd.ErrWriter, "digest failed for %s: %v\n", paths[i], err)
					}
					digests[i] = digest
					progressCh <- struct{}{}
				}
			}
		}()
	}

	wg.Wait()
	close(progressCh)
	barWg.Wait()

	return digests
}
