package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ResourceKind is the manifest kind handled by apply and delete.
const ResourceKind = "ApiGateway"

// Resource is one manifest document. Spec holds the resource properties
// exactly as an orchestrator would send them.
type Resource struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   Metadata               `yaml:"metadata"`
	Spec       map[string]interface{} `yaml:"spec"`
}

type Metadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

func ParseFile(filename string) ([]Resource, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ParseYAML(data)
}

// ParseYAML parses one or more documents separated by ---. Documents of
// other kinds are skipped.
func ParseYAML(data []byte) ([]Resource, error) {
	var resources []Resource

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var res Resource
		err := decoder.Decode(&res)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}

		if res.Kind != ResourceKind {
			continue
		}
		if res.Metadata.Name == "" {
			return nil, fmt.Errorf("%s resource without metadata.name", ResourceKind)
		}
		resources = append(resources, res)
	}

	return resources, nil
}
