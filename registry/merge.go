package registry

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DeepMerge merges overlay into base recursively. Keys present in the
// overlay win; nested maps are merged key by key, anything else is replaced
// wholesale. Neither input is mutated.
func DeepMerge(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		overlayMap, overlayIsMap := v.(map[string]any)
		baseMap, baseIsMap := merged[k].(map[string]any)
		if overlayIsMap && baseIsMap {
			merged[k] = DeepMerge(baseMap, overlayMap)
			continue
		}
		merged[k] = v
	}
	return merged
}

// LoadMerged reads the project-specific tool config and, when present, the
// shared defaults file, returning the deep merge with the project file
// taking precedence.
func LoadMerged(projectFile, defaultFile string) (map[string]any, error) {
	project, err := loadYAMLMap(projectFile)
	if err != nil {
		return nil, err
	}
	if defaultFile == "" {
		return project, nil
	}

	defaults, err := loadYAMLMap(defaultFile)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return project, nil
		}
		return nil, err
	}
	return DeepMerge(defaults, project), nil
}

func loadYAMLMap(path string) (map[string]any, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	doc := make(map[string]any)
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}
	return normalizeKeys(doc), nil
}

// normalizeKeys strips the leading colon ceedling uses for its ruby-symbol
// keys (":project" and "project" address the same setting).
func normalizeKeys(doc map[string]any) map[string]any {
	normalized := make(map[string]any, len(doc))
	for k, v := range doc {
		key := k
		if len(key) > 1 && key[0] == ':' {
			key = key[1:]
		}
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		normalized[key] = v
	}
	return normalized
}
