package roster

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk roster shape. YAML is a superset of JSON, so both
// formats load through the same decoder.
type File struct {
	Threshold int     `yaml:"threshold"`
	Members   []Entry `yaml:"members"`
}

// LoadFile reads a roster file. A zero threshold in the file means "split in
// half".
func LoadFile(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Roster, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse roster file: %w", err)
	}
	threshold := f.Threshold
	if threshold == 0 {
		threshold = len(f.Members) / 2
	}
	return New(f.Members, threshold)
}
