// Package output places generated cards in the output tree and bundles the
// tree into the published deck archive.
package output

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/card"
)

// SourceDir is the output subdirectory holding a copy of the deck sources.
const SourceDir = "src"

// CardPath returns the output path of a card, relative to the output root.
func CardPath(color card.Color, index int) string {
	return filepath.Join(string(color), fmt.Sprintf("card_%d.png", index))
}

// Relocate writes img to {root}/{color}/card_{index}.png, creating the color
// directory if needed, and returns the written path.
func Relocate(root string, color card.Color, index int, img image.Image) (string, error) {
	dest := filepath.Join(root, CardPath(color, index))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}
	if err := imaging.Save(img, dest); err != nil {
		return "", fmt.Errorf("error saving %s: %w", dest, err)
	}
	return dest, nil
}

// Clean removes the generated color directories and the source copy so a
// run starts from an empty tree. Other files under root are left alone.
func Clean(root string) error {
	dirs := []string{SourceDir}
	for _, c := range card.Colors {
		dirs = append(dirs, string(c))
	}
	for _, dir := range dirs {
		if err := os.RemoveAll(filepath.Join(root, dir)); err != nil {
			return fmt.Errorf("error cleaning %s: %w", dir, err)
		}
	}
	return nil
}

// CountFiles returns the number of regular files under root.
func CountFiles(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	return count, err
}

// copyTree copies the regular files of src into dst, keeping the directory
// structure.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
