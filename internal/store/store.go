package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dnswlt/tagsync/internal/atlas"
	"gopkg.in/yaml.v3"
)

// Store is a minimal abstraction to list and read files.
type Store interface {
	// ListFiles lists all files in dir (recursively).
	// The resulting paths will all be relative to the store's root directory,
	// so they can be passed to ReadFile unmodified.
	ListFiles(dir string) ([]string, error)
	// ReadFile reads the contents of path from the store.
	// path should be a relative path (e.g., "notifications/batch-1.yml").
	ReadFile(path string) ([]byte, error)
}

// DiskStore is an implementation of Store that reads files from the local file system.
type DiskStore struct {
	rootDir string
}

var _ Store = (*DiskStore)(nil)

func NewDiskStore(rootDir string) *DiskStore {
	return &DiskStore{
		rootDir: rootDir,
	}
}

func (d *DiskStore) ListFiles(dir string) ([]string, error) {
	if _, err := resolveRelPath(d.rootDir, dir); err != nil {
		return nil, err
	}
	return listFilesRecursively(d.rootDir, dir)
}

func resolveRelPath(root, subpath string) (string, error) {
	fullPath := filepath.Join(root, subpath)

	// Verify ancestry by calculating the relative path from the root.
	rel, err := filepath.Rel(root, fullPath)
	if err != nil {
		return "", fmt.Errorf("not a relative path: %v", err) // e.g. paths on different volumes
	}

	// A relative path escaping the root will start with ".."
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes root directory", subpath)
	}

	return fullPath, nil
}

func (d *DiskStore) ReadFile(path string) ([]byte, error) {
	fullPath, err := resolveRelPath(d.rootDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(fullPath)
}

// ReadEntities reads catalog entities from path. The file may contain
// several YAML documents, each holding either a single entity or a list
// of entities. Since JSON is valid YAML, JSON files are accepted as well.
func ReadEntities(st Store, path string) ([]*atlas.Entity, error) {
	bs, err := st.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(bs))

	var entities []*atlas.Entity
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode YAML node in %q: %w", path, err)
		}

		// node.Content will be empty for blank documents (e.g., just "---")
		if len(node.Content) == 0 {
			continue
		}

		root := node.Content[0]
		switch root.Kind {
		case yaml.SequenceNode:
			var es []*atlas.Entity
			if err := root.Decode(&es); err != nil {
				return nil, fmt.Errorf("error in document %q starting at line %d: %v", path, node.Line, err)
			}
			entities = append(entities, es...)
		case yaml.MappingNode:
			var e atlas.Entity
			if err := root.Decode(&e); err != nil {
				return nil, fmt.Errorf("error in document %q starting at line %d: %v", path, node.Line, err)
			}
			entities = append(entities, &e)
		default:
			return nil, fmt.Errorf("error in document %q starting at line %d: expected entity or list of entities", path, node.Line)
		}
	}

	return entities, nil
}

// listFilesRecursively lists all files in subDir, which must
// be a relative path specifying a sub-directory of rootDir.
// The resulting paths will all be relative to rootDir.
func listFilesRecursively(rootDir, subDir string) ([]string, error) {
	var files []string

	startDir := filepath.Join(rootDir, subDir)
	err := filepath.WalkDir(startDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		files = append(files, relPath)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// NotificationFiles lists all *.yml, *.yaml and *.json files under dir,
// which must be a relative path (relative to the store's root).
// The result is sorted lexically so that batches are replayed in a stable order.
func NotificationFiles(st Store, dir string) ([]string, error) {
	allFiles, err := st.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, f := range allFiles {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".yml", ".yaml", ".json":
			result = append(result, f)
		}
	}
	slices.Sort(result)
	return result, nil
}
