package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// unformattedSuffix replaces ".go" in the sidecar kept when gofmt rejects
	// a rendered builder.
	unformattedSuffix = ".unformatted.go"
)

// WriteFiles writes generated builders into outputDir, creating it when
// needed. An existing file is only replaced if it starts with Header, so a
// hand-written command_builder.go is never clobbered.
func WriteFiles(files []GeneratedFile, outputDir string) error {
	if len(files) == 0 {
		return nil
	}

	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, file := range files {
		outputPath := filepath.Join(outputDir, file.Filename)

		if err := checkOwned(outputPath); err != nil {
			return err
		}

		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}

func checkOwned(path string) error {
	existing, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading existing %s: %w", filepath.Base(path), err)
	}

	if !bytes.HasPrefix(existing, []byte(Header)) {
		return fmt.Errorf("refusing to overwrite %s: not generated by builder-gen", filepath.Base(path))
	}

	return nil
}

// writeUnformatted keeps source that gofmt rejected next to the builder it
// was meant to become, as "<name>.unformatted.go". Callers ignore the error.
func writeUnformatted(outDir, filename string, content []byte) error {
	if outDir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return err
	}

	name := strings.TrimSuffix(filename, ".go") + unformattedSuffix

	return os.WriteFile(filepath.Join(outDir, name), content, filePerm)
}
