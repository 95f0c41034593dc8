package utils

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UnzipFile expands every entry of zipPath into targetPath, replacing files
// that already exist. Entries resolving outside targetPath are rejected.
func UnzipFile(zipPath, targetPath string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(targetPath)
	if err != nil {
		return nil, err
	}

	var extracted []string
	for _, f := range r.File {
		path := filepath.Join(root, f.Name)
		if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return nil, fmt.Errorf("illegal file path in archive: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, err
			}
			continue
		}

		if err := extractEntry(f, path); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		extracted = append(extracted, path)
	}
	return extracted, nil
}

func extractEntry(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, rc); err != nil {
		return err
	}
	return outFile.Close()
}
