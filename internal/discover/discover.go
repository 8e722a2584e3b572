// Package discover walks an input directory and classifies the files it finds.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrDirectoryNotFound = errors.New("directory does not exist")
	ErrDirectoryEmpty    = errors.New("directory is empty")
)

// Kind is the role of a discovered file.
type Kind int

const (
	KindUnknown Kind = iota
	KindCoordinates
	KindAnnotations
	KindHidden
)

func (k Kind) String() string {
	switch k {
	case KindCoordinates:
		return "coordinates"
	case KindAnnotations:
		return "gtf"
	case KindHidden:
		return "hidden"
	}
	return "unknown"
}

// File is a regular file found under the input root.
type File struct {
	Path string
	Kind Kind
}

// Classify decides the kind of a file from its base name.
func Classify(name string) Kind {
	if strings.HasPrefix(name, ".") {
		return KindHidden
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return KindCoordinates
	case ".gtf":
		return KindAnnotations
	}
	return KindUnknown
}

// CheckRoot verifies that root is an existing, non-empty directory.
func CheckRoot(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", root, ErrDirectoryNotFound)
		}
		return fmt.Errorf("read %s: %w", root, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%s: %w", root, ErrDirectoryEmpty)
	}
	return nil
}

// Walk returns a lazy sequence of the regular files under root, in lexical
// order. Nothing is read until the sequence is ranged over, and each range
// walks the tree again. Hidden directories are not descended into; hidden
// files are yielded with KindHidden so callers can account for them.
// A walk error is yielded once and ends the sequence.
func Walk(root string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !yield(File{Path: path, Kind: Classify(d.Name())}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(File{}, fmt.Errorf("walk %s: %w", root, err))
		}
	}
}
