// Package filesystem reads the document corpus from local directories and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.CorpusReader = (*Reader)(nil)

// DocumentExt is the extension of corpus documents.
const DocumentExt = ".txt"

// Reader reads *.txt documents from partition directories.
// Partitions are not searched recursively.
type Reader struct {
	root string
}

// NewReader creates a reader rooted at root.
func NewReader(root string) *Reader {
	return &Reader{root: root}
}

// Root returns the corpus root directory.
func (r *Reader) Root() string {
	return r.root
}

// resolve maps a partition to its directory.
func (r *Reader) resolve(partition string) string {
	if filepath.IsAbs(partition) || r.root == "" {
		return partition
	}
	return filepath.Join(r.root, partition)
}

// Dirs maps partitions to the directories they are read from.
func (r *Reader) Dirs(partitions []string) []string {
	dirs := make([]string, 0, len(partitions))
	for _, p := range partitions {
		dirs = append(dirs, r.resolve(p))
	}
	return dirs
}

// ReadPartition returns the partition's documents sorted by filename.
func (r *Reader) ReadPartition(ctx context.Context, partition string) ([]domain.Document, []domain.Issue, error) {
	dir := r.resolve(partition)
	entries, err := listDocuments(dir)
	if err != nil {
		return nil, nil, err
	}

	var (
		docs   []domain.Document
		issues []domain.Issue
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return docs, issues, err
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			issues = append(issues, domain.Issue{
				Path: path,
				Err:  fmt.Errorf("%w: %w", domain.ErrRankingIO, err),
			})
			continue
		}
		docs = append(docs, domain.Document{
			ID:        entry.Name(),
			Partition: partition,
			Path:      path,
			Content:   strings.TrimSpace(string(data)),
		})
	}
	return docs, issues, nil
}

// Stat summarises a partition from file metadata.
func (r *Reader) Stat(partition string) (domain.PartitionStats, error) {
	stats := domain.PartitionStats{Partition: partition}
	entries, err := listDocuments(r.resolve(partition))
	if errors.Is(err, domain.ErrNotFound) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	stats.Exists = true
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		size := info.Size()
		if stats.FileCount == 0 || size < stats.Smallest {
			stats.Smallest = size
		}
		if size > stats.Largest {
			stats.Largest = size
		}
		stats.TotalSize += size
		stats.FileCount++
	}
	return stats, nil
}

// listDocuments returns the visible *.txt regular files in dir, sorted by name.
func listDocuments(dir string) ([]fs.DirEntry, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: partition %s", domain.ErrNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("stat partition: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read partition: %w", err)
	}

	out := entries[:0]
	for _, e := range entries {
		if isDocument(e.Name()) && e.Type().IsRegular() {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func isDocument(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.EqualFold(filepath.Ext(name), DocumentExt)
}
