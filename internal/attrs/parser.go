// Package attrs builds launch/item attributes and provider configuration maps
// from environment variables, JSON strings, JSON files and key=value pairs.
package attrs

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/janhq/autoqa-reporter/internal/reportportal"
)

// ParseKV parses a key=value pair, attempting type inference for the value
func ParseKV(kvPair string) (string, any, error) {
	parts := strings.SplitN(kvPair, "=", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid format, expected key=value: %s", kvPair)
	}

	key := strings.TrimSpace(parts[0])
	if key == "" {
		return "", nil, fmt.Errorf("empty key in key=value pair")
	}

	valueStr := strings.TrimSpace(parts[1])

	// Try to parse as integer first (to avoid "1" being parsed as boolean true)
	if intVal, err := strconv.Atoi(valueStr); err == nil {
		return key, intVal, nil
	}

	// Try to parse as float
	if floatVal, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return key, floatVal, nil
	}

	// Try to parse as boolean (only for explicit "true"/"false" strings)
	if valueStr == "true" || valueStr == "false" {
		boolVal, _ := strconv.ParseBool(valueStr)
		return key, boolVal, nil
	}

	// Return as string
	return key, valueStr, nil
}

// ParseJSON parses a JSON object string into a map
func ParseJSON(jsonStr string) (map[string]any, error) {
	var result map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return result, nil
}

// ParseFile reads and parses a JSON object from a file
func ParseFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("invalid JSON in file %s: %w", path, err)
	}
	return result, nil
}

// ParseEnvWithPrefix parses environment variables with a custom prefix. The
// bare prefix may hold a JSON object; PREFIX_KEY variables set single keys.
func ParseEnvWithPrefix(prefix string) map[string]any {
	result := make(map[string]any)

	if jsonStr := os.Getenv(prefix); jsonStr != "" {
		if parsed, err := ParseJSON(jsonStr); err == nil {
			maps.Copy(result, parsed)
		}
	}

	envPrefix := prefix + "_"
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				key := strings.ToLower(strings.TrimPrefix(parts[0], envPrefix))
				// Apply type inference to env var values
				_, value, _ := ParseKV(key + "=" + parts[1])
				result[key] = value
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// BuildMap merges all sources with increasing precedence:
// environment < file < JSON string < key=value pairs.
func BuildMap(envPrefix, jsonStr string, kvPairs []string, filePath string) (map[string]any, error) {
	result := make(map[string]any)

	if envPrefix != "" {
		if envMap := ParseEnvWithPrefix(envPrefix); envMap != nil {
			maps.Copy(result, envMap)
		}
	}

	if filePath != "" {
		fileMap, err := ParseFile(filePath)
		if err != nil {
			return nil, err
		}
		maps.Copy(result, fileMap)
	}

	if jsonStr != "" {
		jsonMap, err := ParseJSON(jsonStr)
		if err != nil {
			return nil, err
		}
		maps.Copy(result, jsonMap)
	}

	for _, kv := range kvPairs {
		key, value, err := ParseKV(kv)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}

	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// BuildAttributes builds backend attributes from the same sources as BuildMap,
// rendering scalar values as strings in a stable key order.
func BuildAttributes(envPrefix, jsonStr string, kvPairs []string, filePath string) ([]reportportal.Attribute, error) {
	merged, err := BuildMap(envPrefix, jsonStr, kvPairs, filePath)
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	attributes := make([]reportportal.Attribute, 0, len(keys))
	for _, key := range keys {
		attributes = append(attributes, reportportal.Attribute{
			Key:   key,
			Value: renderValue(merged[key]),
		})
	}
	return attributes, nil
}

func renderValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
