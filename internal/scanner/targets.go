// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scanner

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/meshintel/component-manager/pkg/types"
)

type targetsFile struct {
	Targets []types.ScanTarget `yaml:"targets"`
}

// ReadTargetsFile loads scan targets from a YAML file of the form:
//
//	targets:
//	  - path: server/services
//	    type: service
func ReadTargetsFile(path string) ([]types.ScanTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading targets file: %w", err)
	}
	var tf targetsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing targets file %s: %w", path, err)
	}
	if len(tf.Targets) == 0 {
		return nil, fmt.Errorf("targets file %s: no targets defined", path)
	}
	for i, t := range tf.Targets {
		if t.Path == "" {
			return nil, fmt.Errorf("targets file %s: target %d has no path", path, i)
		}
		if !t.Type.Valid() {
			return nil, fmt.Errorf("targets file %s: target %s has unknown type %q", path, t.Path, t.Type)
		}
	}
	return tf.Targets, nil
}

// WriteTargetsFile writes scan targets as YAML, the same shape
// ReadTargetsFile loads.
func WriteTargetsFile(path string, targets []types.ScanTarget) error {
	data, err := yaml.Marshal(targetsFile{Targets: targets})
	if err != nil {
		return fmt.Errorf("encoding targets: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing targets file: %w", err)
	}
	return nil
}
