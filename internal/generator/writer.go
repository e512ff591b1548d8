package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DatasetFile is the file name written by WriteDataset.
const DatasetFile = "campus.yaml"

// WriteDataset serializes the dataset into campus.yaml under the provided directory
// and returns the file path.
func WriteDataset(dataset Dataset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, DatasetFile)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(dataset); err != nil {
		return "", fmt.Errorf("encode yaml for %s: %w", path, err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// ReadDataset loads a dataset previously written by WriteDataset or edited by hand.
func ReadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read %s: %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return ds, nil
}
