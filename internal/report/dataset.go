package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/ttscrape/internal/model"
)

// Dataset file names.
const (
	CoursesFile = "courses.json"
	ClassesFile = "classes.json"
	TimesFile   = "times.json"
)

// WriteDataset writes ds into dir as three indented JSON arrays, creating
// dir if needed.
func WriteDataset(dir string, ds *model.Dataset) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name string
		rows any
	}{
		{CoursesFile, ds.Courses},
		{ClassesFile, ds.Classes},
		{TimesFile, ds.Times},
	}
	for _, f := range files {
		if err := writeJSONFile(filepath.Join(dir, f.name), f.rows); err != nil {
			return err
		}
	}
	return nil
}

// ReadDataset reads the files written by WriteDataset.
func ReadDataset(dir string) (*model.Dataset, error) {
	ds := &model.Dataset{}
	if err := readJSONFile(filepath.Join(dir, CoursesFile), &ds.Courses); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, ClassesFile), &ds.Classes); err != nil {
		return nil, err
	}
	if err := readJSONFile(filepath.Join(dir, TimesFile), &ds.Times); err != nil {
		return nil, err
	}
	return ds, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	// Readers never see a partially written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
