// Package dircache loads a [model.DirectoryCache] and seeds it into the
// data directory of a tor instance.
//
// Tor bootstraps faster, and without contacting the directory
// authorities, when its data directory already contains a fresh
// microdescriptor consensus and the matching microdescriptors. We write
// the Nodes and Relays of the directory cache exactly where tor looks
// for them.
package dircache

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ooni/torhttp/internal/model"
	"github.com/rogpeppe/go-internal/lockedfile"
)

const (
	// ConsensusFile is the name of the consensus inside tor's data directory.
	ConsensusFile = "cached-microdesc-consensus"

	// MicrodescsFile is the name of the microdescriptors inside tor's data directory.
	MicrodescsFile = "cached-microdescs"
)

// ErrNoTmpDir indicates that the directory cache does not contain a TmpDir.
var ErrNoTmpDir = errors.New("dircache: no scratch directory")

// Load creates a [model.DirectoryCache] using tmpDir as the scratch
// directory and reading the nodes and relays from the given files. An
// empty file name leaves the corresponding field empty.
func Load(tmpDir, nodesFile, relaysFile string) (model.DirectoryCache, error) {
	dc := model.DirectoryCache{TmpDir: tmpDir}
	var err error
	if dc.Nodes, err = maybeReadFile(nodesFile); err != nil {
		return model.DirectoryCache{}, fmt.Errorf("dircache: cannot read nodes: %w", err)
	}
	if dc.Relays, err = maybeReadFile(relaysFile); err != nil {
		return model.DirectoryCache{}, fmt.Errorf("dircache: cannot read relays: %w", err)
	}
	return dc, nil
}

func maybeReadFile(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	data, err := lockedfile.Read(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DataDir returns the tor data directory inside dc.TmpDir.
func DataDir(dc model.DirectoryCache) (string, error) {
	if dc.TmpDir == "" {
		return "", ErrNoTmpDir
	}
	return filepath.Join(dc.TmpDir, "tor"), nil
}

// osMkdirAll is the type of os.MkdirAll.
type osMkdirAll func(path string, perm fs.FileMode) error

// Seed creates the tor data directory for dc and writes into it the
// nodes and the relays, if available. Tor replaces these files when it
// downloads a newer consensus, so seeding is only useful on startup.
func Seed(dc model.DirectoryCache) (string, error) {
	return seed(dc, os.MkdirAll)
}

func seed(dc model.DirectoryCache, mkdir osMkdirAll) (string, error) {
	dataDir, err := DataDir(dc)
	if err != nil {
		return "", err
	}
	if err := mkdir(dataDir, 0700); err != nil {
		return "", err
	}
	if err := maybeWriteFile(filepath.Join(dataDir, ConsensusFile), dc.Nodes); err != nil {
		return "", err
	}
	if err := maybeWriteFile(filepath.Join(dataDir, MicrodescsFile), dc.Relays); err != nil {
		return "", err
	}
	return dataDir, nil
}

func maybeWriteFile(filename, content string) error {
	if content == "" {
		return nil
	}
	return lockedfile.Write(filename, bytes.NewReader([]byte(content)), 0600)
}
