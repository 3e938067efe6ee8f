package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// encodeJSON marshals v for a JSON column. A nil map is stored as "{}".
func encodeJSON(v map[string]any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("{}"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return datatypes.JSON(data), nil
}

func decodeJSON(data datatypes.JSON) (map[string]any, error) {
	out := map[string]any{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return out, nil
}
