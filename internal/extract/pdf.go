// Package extract converts uploaded document bytes into plain text.
package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"unicode/utf8"

	"github.com/hirelens/hirelens/internal/domain"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFExtractor extracts text from PDF bytes by shelling out to pdftotext.
type PDFExtractor struct {
	runner  CommandRunner
	binPath string
}

// New creates a PDFExtractor using the given pdftotext binary path.
func New(binPath string) *PDFExtractor {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PDFExtractor{runner: execRunner{}, binPath: binPath}
}

// NewWithRunner creates a PDFExtractor with a custom runner (test seam).
func NewWithRunner(runner CommandRunner, binPath string) *PDFExtractor {
	e := New(binPath)
	e.runner = runner
	return e
}

// Text converts document bytes to UTF-8 plain text. Single-shot: any failure
// of the external tool is terminal for the enclosing request.
func (e *PDFExtractor) Text(ctx context.Context, doc []byte) (string, error) {
	if len(doc) == 0 {
		return "", fmt.Errorf("empty document: %w", domain.ErrTextExtraction)
	}

	tmp, err := os.CreateTemp("", "hirelens-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w: %w", err, domain.ErrTextExtraction)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w: %w", err, domain.ErrTextExtraction)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w: %w", err, domain.ErrTextExtraction)
	}

	// "-" sends the extracted text to stdout.
	out, err := e.runner.Run(ctx, e.binPath, "-layout", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %w", err, domain.ErrTextExtraction)
	}

	if !utf8.Valid(out) {
		return "", fmt.Errorf("pdftotext produced invalid UTF-8: %w", domain.ErrTextExtraction)
	}

	return string(out), nil
}
