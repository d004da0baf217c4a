package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cubelab/solfilter/domain"
)

// StdinPath is the path that reads solutions from standard input
const StdinPath = "-"

// SolutionReaderImpl implements the SolutionReader interface
type SolutionReaderImpl struct {
	// Pattern selects files inside directory arguments
	Pattern string
}

// NewSolutionReader creates a new solution reader
func NewSolutionReader() *SolutionReaderImpl {
	return &SolutionReaderImpl{Pattern: domain.DefaultSolutionFilePattern}
}

// CollectFiles expands directories and glob patterns into a sorted list of
// files. "-" is passed through.
func (r *SolutionReaderImpl) CollectFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		if path == StdinPath {
			add(path)
			continue
		}

		if hasGlobMeta(path) {
			matches, err := doublestar.FilepathGlob(path, doublestar.WithFilesOnly())
			if err != nil {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid glob pattern: %s", path), err)
			}
			if len(matches) == 0 {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("no files found matching: %s", path), nil)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(path), r.Pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid solution file pattern: %s", r.Pattern), err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(filepath.Join(path, filepath.FromSlash(m)))
		}
	}

	return files, nil
}

// ReadSolutions reads every solution line from the given paths in order
func (r *SolutionReaderImpl) ReadSolutions(ctx context.Context, paths []string, stdin io.Reader) ([]string, error) {
	files, err := r.CollectFiles(paths)
	if err != nil {
		return nil, err
	}

	var solutions []string
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, domain.NewCancelledError(err)
		}

		if path == StdinPath {
			if stdin == nil {
				return nil, domain.NewInvalidInputError("standard input is not available", nil)
			}
			lines, err := ParseSolutions(stdin)
			if err != nil {
				return nil, domain.NewInvalidInputError("failed to read standard input", err)
			}
			solutions = append(solutions, lines...)
			continue
		}

		lines, err := r.readFile(path)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, lines...)
	}

	return solutions, nil
}

func (r *SolutionReaderImpl) readFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	defer file.Close()

	lines, err := ParseSolutions(file)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("failed to read %s", path), err)
	}
	return lines, nil
}

// ParseSolutions splits a stream into solution lines. Blank lines and lines
// starting with "#" are skipped; a leading "N:" numbering is removed.
func ParseSolutions(reader io.Reader) ([]string, error) {
	var solutions []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, domain.DefaultCommentPrefix) {
			continue
		}
		solutions = append(solutions, stripNumbering(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return solutions, nil
}

// stripNumbering removes a "12:" style prefix
func stripNumbering(line string) string {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return line
	}
	for _, c := range line[:colon] {
		if c < '0' || c > '9' {
			return line
		}
	}
	return strings.TrimSpace(line[colon+1:])
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
