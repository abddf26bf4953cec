package koreader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FindMetadataFiles walks root recursively and returns every regular file
// named exactly fileName, sorted by path. Directories that cannot be read
// are skipped.
func FindMetadataFiles(root, fileName string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("books directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("books path %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && d.Name() == fileName {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
