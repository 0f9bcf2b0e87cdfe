// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed registry.json
var embedded []byte

// Definition names shared between activities.
const (
	DefinitionQueryRecord     = "queryRecord"
	DefinitionQueryRecordList = "queryRecordList"
)

// LoadRegistry reads a registry file from disk.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data)
}

// Default returns the registry compiled into the binary.
func Default() (*ActivityRegistry, error) {
	return parse(embedded)
}

func parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse activity registry: %w", err)
	}
	return &reg, nil
}

// Activity looks up an activity by its Zeebe task type.
func (r *ActivityRegistry) Activity(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("activity %q not found in registry", taskType)
}

// Definition returns a shared schema by name.
func (r *ActivityRegistry) Definition(name string) (map[string]interface{}, error) {
	def, ok := r.Definitions[name]
	if !ok {
		return nil, fmt.Errorf("definition %q not found in registry", name)
	}
	return def, nil
}
