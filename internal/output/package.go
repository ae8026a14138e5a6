package output

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// PackageOptions describes one archive build.
type PackageOptions struct {
	Root       string // Output tree to bundle
	SourceDir  string // Deck directory copied into {Root}/src
	ArchiveDir string // Published archive directory
	Name       string // Archive base name without extension, e.g. deck_party
}

// ArchivePath returns the published archive path.
func (o PackageOptions) ArchivePath() string {
	return filepath.Join(o.ArchiveDir, o.Name+".zip")
}

// Package copies the deck sources into the output tree and bundles the whole
// tree into {ArchiveDir}/{Name}.zip. The archive is built under a temporary
// name next to its destination and renamed into place, so readers never see
// a partial archive. Any subset of generated cards is accepted.
func Package(opts PackageOptions) (string, error) {
	if err := copyTree(opts.SourceDir, filepath.Join(opts.Root, SourceDir)); err != nil {
		return "", fmt.Errorf("error copying deck sources: %w", err)
	}

	if err := os.MkdirAll(opts.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("error creating archive directory: %w", err)
	}
	dest := opts.ArchivePath()
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("error removing previous archive: %w", err)
	}

	tmp, err := os.CreateTemp(opts.ArchiveDir, "."+opts.Name+"-*.zip")
	if err != nil {
		return "", fmt.Errorf("error creating archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeZip(tmp, opts.Root, tmp.Name()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("error writing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("error writing archive: %w", err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("error publishing archive: %w", err)
	}
	return dest, nil
}

// writeZip adds every regular file under root to w with slash-separated
// names relative to root. skip is excluded when the archive lives inside
// the tree it bundles.
func writeZip(w io.Writer, root, skip string) error {
	zw := zip.NewWriter(w)

	skipAbs, _ := filepath.Abs(skip)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == skipAbs {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
