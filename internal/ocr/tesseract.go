package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// Recognizer turns image bytes into raw text. Implementations are treated as
// pure but noisy; the parser copes with garbled output.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, langModel string) (string, error)
}

// Tesseract shells out to the tesseract binary, feeding the image over stdin
// and reading the recognized text from stdout.
type Tesseract struct {
	binary string
	logger zerolog.Logger
}

func NewTesseract(binary string, logger zerolog.Logger) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	return &Tesseract{binary: binary, logger: logger}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte, langModel string) (string, error) {
	if langModel == "" {
		langModel = "eng"
	}

	cmd := exec.CommandContext(ctx, t.binary,
		"stdin", "stdout",
		"--psm", "6",
		"--oem", "1",
		"-c", "preserve_interword_spaces=1",
		"-l", langModel,
	)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.logger.Error().
			Err(err).
			Str("lang", langModel).
			Str("stderr", stderr.String()).
			Msg("tesseract failed")
		return "", fmt.Errorf("tesseract: %w", err)
	}

	return stdout.String(), nil
}
