package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/VidraAI/vidra-mvp/engine/domain"
)

// Save writes the transcript as a JSON document at path, creating parent
// directories as needed. The write goes through a temp file and rename so a
// crash never leaves a truncated transcript behind.
func Save(path string, tr domain.Transcript) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("transcript: mkdir: %w", err)
	}

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("transcript: marshal: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("transcript: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("transcript: rename: %w", err)
	}
	return nil
}

// SaveChunks persists the enriched chunk metadata produced by processing,
// with the same temp-and-rename discipline as Save.
func SaveChunks(path string, chunks []domain.ChunkMeta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("transcript: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("transcript: marshal chunks: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("transcript: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("transcript: rename: %w", err)
	}
	return nil
}

// Load reads a persisted transcript. A missing file is not an error: it
// returns an empty transcript so a fresh process starts with no video loaded.
func Load(path string) (domain.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Transcript{}, nil
		}
		return domain.Transcript{}, fmt.Errorf("transcript: read %s: %w", path, err)
	}

	var tr domain.Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return domain.Transcript{}, fmt.Errorf("transcript: decode %s: %w", path, err)
	}
	return tr, nil
}
