// Package source models the analyzed corpus: a set of text files with
// stable identities. The engine makes no assumption about how files were
// obtained; LoadDir is the filesystem loader and FromMap builds a corpus
// from content supplied by another collaborator.
package source

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/zeebo/blake3"
)

// File is one source file. Immutable once loaded.
type File struct {
	// Path is the file's stable identity, relative to the corpus root and
	// slash-separated.
	Path string
	Text []byte
}

// LineCount returns the number of lines in the raw text. A trailing
// newline does not start an extra line.
func (f *File) LineCount() int {
	if len(f.Text) == 0 {
		return 0
	}
	n := strings.Count(string(f.Text), "\n")
	if !strings.HasSuffix(string(f.Text), "\n") {
		n++
	}
	return n
}

// ContentHash returns the BLAKE3 hex digest of the file's text.
func (f *File) ContentHash() string {
	sum := blake3.Sum256(f.Text)
	return hex.EncodeToString(sum[:])
}

// Corpus is an ordered set of source files. Files are sorted by path so
// corpus identity is independent of discovery order.
type Corpus struct {
	Root  string
	Files []*File
}

// Fingerprint returns a stable identity for the corpus content: the BLAKE3
// digest over the sorted (path, content hash) pairs. Two corpora with the
// same paths and contents always share a fingerprint.
func (c *Corpus) Fingerprint() string {
	h := blake3.New()
	for _, f := range c.Files {
		fmt.Fprintf(h, "%s\x00%s\x00", f.Path, f.ContentHash())
	}
	return hex.EncodeToString(h.Sum(nil))
}

var skipDirs = map[string]bool{
	".git":         true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"node_modules": true,
}

func isPythonFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".py", ".pyw", ".pyi":
		return true
	}
	return false
}

// LoadDir loads all Python files under root, honoring a .gitignore at the
// root when present.
func LoadDir(root string) (*Corpus, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = gi
	}

	corpus := &Corpus{Root: root}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			if matcher != nil && rel != "." && matcher.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isPythonFile(d.Name()) {
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}

		text, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		corpus.Files = append(corpus.Files, &File{Path: rel, Text: text})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortFiles(corpus.Files)
	return corpus, nil
}

// FromMap builds a corpus from in-memory content keyed by path.
func FromMap(root string, files map[string]string) *Corpus {
	corpus := &Corpus{Root: root}
	for path, text := range files {
		corpus.Files = append(corpus.Files, &File{Path: path, Text: []byte(text)})
	}
	sortFiles(corpus.Files)
	return corpus
}

func sortFiles(files []*File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
