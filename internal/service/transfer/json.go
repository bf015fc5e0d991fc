package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedJSON indicates a JSON import payload that is neither a task
// array nor an object wrapping one, or that carries stringified objects.
var ErrMalformedJSON = errors.New("malformed JSON import")

// taskExport is the JSON export shape for one task: lowerCamel keys,
// explicit nulls for absent values, category rendered by name.
type taskExport struct {
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Category    *string `json:"category"`
	DueDate     *string `json:"dueDate"`
	DueTime     *string `json:"dueTime"`
	Priority    string  `json:"priority"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	CompletedAt *string `json:"completedAt"`
}

// jsonImportEnvelope is the wrapped import shape: {"tasks": [...]}.
type jsonImportEnvelope struct {
	Tasks []Record `json:"tasks"`
}

// decodeJSON parses a JSON import payload. It accepts a bare task array or
// an object with a "tasks" array, and rejects everything else. Payloads
// containing "[object Object]" are rejected outright: that marker means a
// client stringified objects instead of serializing them.
func decodeJSON(data []byte) ([]Record, error) {
	if bytes.Contains(data, []byte("[object Object]")) {
		return nil, fmt.Errorf("%w: contains stringified objects", ErrMalformedJSON)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedJSON)
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		return records, nil
	case '{':
		var envelope jsonImportEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
		if envelope.Tasks == nil {
			return nil, fmt.Errorf("%w: object has no tasks array", ErrMalformedJSON)
		}
		return envelope.Tasks, nil
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformedJSON)
	}
}

// encodeJSON renders the export task list as indented JSON.
func encodeJSON(tasks []taskExport) ([]byte, error) {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return data, nil
}
