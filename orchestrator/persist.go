package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteResult writes the result as indented JSON to path, creating parent
// directories.
func WriteResult(path string, res *Result) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return writeJSON(path, res)
}

// SaveResult writes the result under outputsRoot as
// emotion_<timestamp>_<run>.json and returns the path.
func SaveResult(outputsRoot string, res *Result) (string, error) {
	short := res.RunID
	if len(short) > 8 {
		short = short[:8]
	}
	name := "emotion_" + res.GeneratedAt.Format("20060102-150405") + "_" + short + ".json"
	path := filepath.Join(outputsRoot, name)
	if err := WriteResult(path, res); err != nil {
		return "", err
	}
	return path, nil
}
