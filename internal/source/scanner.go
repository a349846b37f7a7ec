package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanDir walks dataDir and discovers all JSON and CSV transaction files.
// Hidden files and directories are skipped. A missing directory yields no
// files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dataDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		format, ok := FormatOf(path)
		if !ok {
			return nil
		}
		rel, _ := filepath.Rel(dataDir, path)
		files = append(files, DiscoveredFile{Path: path, Name: rel, Format: format})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// FormatOf infers the file format from the extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".csv":
		return FormatCSV, true
	}
	return "", false
}
