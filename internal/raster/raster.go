// Package raster wraps the external pdftoppm tool (poppler) that converts a
// PDF page range into one PNG image per page.
package raster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrNoPages is returned when the tool ran but produced zero page images.
// Callers treat this as fatal for the whole document.
var ErrNoPages = errors.New("no page images were produced")

// Default page range: where recipe content begins and ends in the source
// documents.
const (
	DefaultFirstPage = 13
	DefaultLastPage  = 62
)

// commonBinaryPaths are conventional install locations probed when no
// explicit override is configured.
var commonBinaryPaths = []string{
	"/opt/homebrew/bin/pdftoppm",
	"/usr/local/bin/pdftoppm",
}

// Renderer converts a PDF page range into page images on disk.
type Renderer interface {
	// Render produces one PNG per page of pdfPath in [firstPage, lastPage]
	// into outDir and returns the produced file paths sorted so that
	// lexicographic order equals page order.
	Render(ctx context.Context, pdfPath, outDir string, firstPage, lastPage int) ([]string, error)
}

// Pdftoppm shells out to the pdftoppm binary.
type Pdftoppm struct {
	// BinaryPath overrides binary resolution when non-empty.
	BinaryPath string
}

var _ Renderer = (*Pdftoppm)(nil)

// Render invokes `pdftoppm -png -f <first> -l <last> <pdf> <outDir>/page`.
// pdftoppm zero-pads the page suffix, so a lexicographic sort of the output
// equals page order.
func (p *Pdftoppm) Render(ctx context.Context, pdfPath, outDir string, firstPage, lastPage int) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	bin := p.resolveBinary()
	prefix := filepath.Join(outDir, "page")
	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-f", strconv.Itoa(firstPage),
		"-l", strconv.Itoa(lastPage),
		pdfPath,
		prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	files, err := listPageImages(outDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoPages
	}
	return files, nil
}

// resolveBinary picks the pdftoppm binary: explicit override, then the
// conventional install locations probed for executability, then the bare
// command name relying on PATH.
func (p *Pdftoppm) resolveBinary() string {
	if p.BinaryPath != "" {
		return p.BinaryPath
	}
	for _, candidate := range commonBinaryPaths {
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate
		}
	}
	return "pdftoppm"
}

func listPageImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
