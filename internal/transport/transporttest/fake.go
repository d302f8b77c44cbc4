// Package transporttest provides an in-memory Transport for exercising the
// snapshot orchestration without rsync or a real target.
package transporttest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"rsnap/internal/transport"
)

type SyncCall struct {
	Src  string
	Dst  string
	Opts transport.SyncOptions
}

type PushCall struct {
	Local  string
	Remote string
}

// Fake holds the simulated target state. Files maps remote file paths to
// contents; Dirs marks remote directories. Every mutating call is
// recorded, so tests can assert that a failed gate performed zero writes.
type Fake struct {
	Files map[string][]byte
	Dirs  map[string]bool

	SyncCalls []SyncCall
	PushCalls []PushCall

	SyncErr  error // next Sync calls fail with this when set
	FetchErr error
}

var _ transport.Transport = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Files: make(map[string][]byte),
		Dirs:  make(map[string]bool),
	}
}

// Provision places the marker file and snapshot container on the fake
// target, mirroring what `rsnap provision` does to a real one.
func (f *Fake) Provision(target string) {
	f.Files[target+"/backup_enabled"] = nil
	f.Dirs[target+"/hourly"] = true
}

// WriteCalls counts all mutating transport operations.
func (f *Fake) WriteCalls() int {
	return len(f.SyncCalls) + len(f.PushCalls)
}

func (f *Fake) List(ctx context.Context, path string) ([]string, error) {
	path = strings.TrimRight(path, "/")
	if !f.Dirs[path] {
		return nil, fmt.Errorf("no such directory: %s", path)
	}
	var names []string
	for p := range f.Dirs {
		if rest, ok := childOf(path, p); ok {
			names = append(names, rest)
		}
	}
	for p := range f.Files {
		if rest, ok := childOf(path, p); ok {
			names = append(names, rest)
		}
	}
	return names, nil
}

func childOf(dir, p string) (string, bool) {
	if !strings.HasPrefix(p, dir+"/") {
		return "", false
	}
	rest := strings.TrimPrefix(p, dir+"/")
	if strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func (f *Fake) Probe(ctx context.Context, path string) error {
	path = strings.TrimRight(path, "/")
	if f.Dirs[path] {
		return nil
	}
	if _, ok := f.Files[path]; ok {
		return nil
	}
	return fmt.Errorf("not found: %s", path)
}

func (f *Fake) Fetch(ctx context.Context, remotePath, localPath string) error {
	if f.FetchErr != nil {
		return f.FetchErr
	}
	data, ok := f.Files[remotePath]
	if !ok {
		return fmt.Errorf("not found: %s", remotePath)
	}
	return os.WriteFile(localPath, data, 0o644)
}

func (f *Fake) Push(ctx context.Context, localPath, remotePath string) error {
	f.PushCalls = append(f.PushCalls, PushCall{Local: localPath, Remote: remotePath})
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.Files[remotePath] = data
	return nil
}

func (f *Fake) Sync(ctx context.Context, src, dst string, opts transport.SyncOptions) error {
	f.SyncCalls = append(f.SyncCalls, SyncCall{Src: src, Dst: dst, Opts: opts})
	if f.SyncErr != nil {
		return f.SyncErr
	}
	f.Dirs[strings.TrimRight(dst, "/")] = true
	return nil
}
