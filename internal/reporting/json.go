package reporting

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json sorts map keys so output is stable across runs.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RenderJSON renders v as indented JSON with a trailing newline.
func RenderJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(data) + "\n", nil
}
