package mount

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Load reads a calibrated model from a JSON file. A missing file
// yields the all-zero default model. A file with missing/extra fields,
// or one that does not parse, also yields the default model, with a
// warning logged; no error ever escapes for a malformed file, matching
// the "never crash on bad model data" contract.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Model{}, nil
	}
	if err != nil {
		return Model{}, fmt.Errorf("failed to read model file: %w", err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		// json.Unmarshal rejects syntactically invalid input before
		// UnmarshalJSON runs, so the fallback and its warning are here.
		log.Printf("mount: model file unparseable, resetting to defaults: %v", err)
		return Model{}, nil
	}
	return m, nil
}

// Save writes the model to a JSON file in the flat six-field format.
func Save(path string, m Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}
