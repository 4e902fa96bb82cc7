package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ============================================================
// Plan envelope
// ============================================================

const (
	SchemaID       = "floorplan"
	CurrentVersion = 3
)

// Envelope — конверт сериализации плана: {schema, version, metadata, data}
type Envelope struct {
	Schema   string                     `json:"schema"`
	Version  int                        `json:"version"`
	Metadata map[string]any             `json:"metadata,omitempty"`
	Data     map[string]json.RawMessage `json:"data"`
}

// rawEnvelope откладывает разбор version, чтобы отличить 1 от 1.5 и "1"
type rawEnvelope struct {
	Schema   string                     `json:"schema"`
	Version  json.RawMessage            `json:"version"`
	Metadata map[string]any             `json:"metadata"`
	Data     map[string]json.RawMessage `json:"data"`
}

// Parse валидирует конверт до каких-либо миграций: id схемы,
// целочисленная версия, наличие массивов walls и rooms.
func Parse(payload []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	if raw.Schema != SchemaID {
		return nil, fmt.Errorf("unknown schema id %q", raw.Schema)
	}

	version, err := parseIntVersion(raw.Version)
	if err != nil {
		return nil, err
	}
	if version < 1 || version > CurrentVersion {
		return nil, fmt.Errorf("unsupported version %d", version)
	}

	if raw.Data == nil {
		return nil, fmt.Errorf("missing data object")
	}
	for _, key := range []string{"walls", "rooms"} {
		arr, ok := raw.Data[key]
		if !ok || !isJSONArray(arr) {
			return nil, fmt.Errorf("data.%s must be an array", key)
		}
	}

	return &Envelope{
		Schema:   raw.Schema,
		Version:  version,
		Metadata: raw.Metadata,
		Data:     raw.Data,
	}, nil
}

func parseIntVersion(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing version")
	}
	v, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, fmt.Errorf("version must be an integer, got %s", bytes.TrimSpace(raw))
	}
	return v, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// ============================================================
// Migrations
// ============================================================

var emptyArray = json.RawMessage("[]")

// по одному шагу версии за раз
var migrations = map[int]func(*Envelope){
	1: func(e *Envelope) { // v1 → v2: размеры и цепочки
		ensureArray(e, "dimensions")
		ensureArray(e, "chains")
	},
	2: func(e *Envelope) { // v2 → v3: именованные параметры
		ensureArray(e, "parameters")
	},
}

func ensureArray(e *Envelope, key string) {
	if _, ok := e.Data[key]; !ok {
		e.Data[key] = emptyArray
	}
}

// Migrate поднимает конверт до текущей версии пошагово
func Migrate(e *Envelope) error {
	for e.Version < CurrentVersion {
		step, ok := migrations[e.Version]
		if !ok {
			return fmt.Errorf("no migration from version %d", e.Version)
		}
		step(e)
		e.Version++
	}
	return nil
}
