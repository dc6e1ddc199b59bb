package codec

import (
	"encoding/json"
)

// JSON is a self-describing Codec over encoding/json. It handles any value
// encoding/json handles; map keys are emitted in sorted order, so encoding
// is deterministic.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
