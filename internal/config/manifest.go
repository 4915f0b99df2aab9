package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/flowmeta/flowmeta/internal/model"
	flowerrors "github.com/flowmeta/flowmeta/pkg/errors"
)

// Header fields a manifest may carry alongside its data. Everything else
// at the top level belongs to the data mapping of a legacy DAG manifest.
var headerFields = map[string]bool{
	"project_id":       true,
	"environment_name": true,
	"metadata_type":    true,
	"data":             true,
}

// Manifest is one kind's desired state, parsed from a YAML or JSON file.
// Each manifest is unique to an environment, so the target project and
// environment travel with it.
type Manifest struct {
	ProjectID       string
	EnvironmentName string
	Kind            string `validate:"required,oneof=connections dags pools roles variables"`
	Objects         *model.Set
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseManifest loads a manifest file from disk, validates it, and builds
// the desired set in declaration order. YAML is a superset of JSON, so
// .json manifests parse through the same decoder.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, flowerrors.NewParseError(path, 0, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, flowerrors.NewParseError(path, extractLine(err), err)
	}

	root := documentRoot(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, flowerrors.NewParseError(path, 0, fmt.Errorf("manifest must be a mapping"))
	}

	manifest := &Manifest{}
	var dataNode *yaml.Node

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]
		switch key {
		case "project_id":
			manifest.ProjectID = value.Value
		case "environment_name":
			manifest.EnvironmentName = value.Value
		case "metadata_type":
			manifest.Kind = value.Value
		case "data":
			dataNode = value
		}
	}

	if manifest.Kind == "" {
		// The DAG manifest format predates the data envelope and carries
		// no type field.
		manifest.Kind = "dags"
	}

	if err := validateManifest(manifest); err != nil {
		return nil, err
	}

	objects, err := buildObjects(path, manifest.Kind, root, dataNode)
	if err != nil {
		return nil, err
	}
	manifest.Objects = objects

	return manifest, nil
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// buildObjects walks the data mapping node directly so declaration order
// survives; decoding into a Go map would shuffle it.
func buildObjects(path, kind string, root, dataNode *yaml.Node) (*model.Set, error) {
	set := model.NewSet()

	entries := func(node *yaml.Node, skipHeader bool) error {
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valueNode := node.Content[i+1]
			if skipHeader && headerFields[keyNode.Value] {
				continue
			}

			attrs, err := decodeAttributes(valueNode)
			if err != nil {
				return flowerrors.NewParseError(path, keyNode.Line, fmt.Errorf("entry %q: %w", keyNode.Value, err))
			}

			set.Put(model.Object{Kind: kind, Identifier: keyNode.Value, Attributes: attrs})
		}
		return nil
	}

	if dataNode != nil {
		if dataNode.Kind != yaml.MappingNode {
			return nil, flowerrors.NewParseError(path, dataNode.Line, fmt.Errorf("data must be a mapping"))
		}
		if err := entries(dataNode, false); err != nil {
			return nil, err
		}
		return set, nil
	}

	// No data envelope: the whole document, minus header fields, is the
	// data mapping.
	if err := entries(root, true); err != nil {
		return nil, err
	}
	return set, nil
}

// decodeAttributes turns an entry value into an attribute map. Scalar and
// sequence values (variables declare plain values) are wrapped under a
// "value" attribute.
func decodeAttributes(node *yaml.Node) (map[string]any, error) {
	if node.Kind == yaml.MappingNode {
		var attrs map[string]any
		if err := node.Decode(&attrs); err != nil {
			return nil, err
		}
		return attrs, nil
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return map[string]any{"value": value}, nil
}

func validateManifest(manifest *Manifest) error {
	if err := validatorInstance().Struct(manifest); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := errors.As(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return flowerrors.NewValidationError("metadata_type", fmt.Sprintf("invalid value %q", first.Value()), err)
		}
		return flowerrors.NewValidationError("", err.Error(), err)
	}
	return nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	_, scanErr := fmt.Sscanf(matches[1], "%d", &line)
	if scanErr != nil {
		return 0
	}

	return line
}
