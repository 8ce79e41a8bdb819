package backend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RemoteBackendEntry is one backends.yaml record.
type RemoteBackendEntry struct {
	Endpoint             string             `yaml:"endpoint"`
	PostPath             string             `yaml:"post_path"`
	HWBackend            string             `yaml:"hwbackend"`
	DefaultShotLimit     int                `yaml:"default_shot_limit"`
	SafeShotLimit        int                `yaml:"safe_shot_limit"`
	ReadoutContrastInit  float64            `yaml:"readout_contrast_init"`
	GateTimingsNs        map[string]float64 `yaml:"gate_timings_ns"`
}

// RemoteBackendDatabase is the parsed contents of backends.yaml: name
// -> connection/limits/timing metadata for the remote-shaped backends.
type RemoteBackendDatabase map[string]RemoteBackendEntry

// LoadRemoteBackendDatabase reads and parses a backends.yaml file.
func LoadRemoteBackendDatabase(path string) (RemoteBackendDatabase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backend: reading %s: %w", path, err)
	}
	var db RemoteBackendDatabase
	if err := yaml.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("backend: parsing %s: %w", path, err)
	}
	return db, nil
}
