package bom

import (
	"bytes"
	"encoding/json"

	"azure-bom-cost/internal/errors"
)

// decodeJSON decodes a JSON document keeping numbers as json.Number
func decodeJSON(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var tree map[string]any
	if err := dec.Decode(&tree); err != nil {
		return nil, errors.Parsing("invalid BOM JSON", err)
	}
	return tree, nil
}
