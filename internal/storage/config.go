package storage

import (
	"encoding/json"
	"fmt"
)

// DefaultSystemConfig is seeded into a fresh database.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{UserMode: SingleUserManualLogin}
}

// ConfigRows flattens cfg into the key/value rows stored by the SQL backends.
// Every value is a JSON document.
func ConfigRows(cfg SystemConfig) (map[string]string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode system config: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("encode system config: %w", err)
	}
	rows := make(map[string]string, len(fields))
	for key, value := range fields {
		rows[key] = string(value)
	}
	return rows, nil
}

// ParseConfigRows is the inverse of ConfigRows. Unknown keys are ignored and
// missing keys keep their defaults.
func ParseConfigRows(rows map[string]string) (SystemConfig, error) {
	fields := make(map[string]json.RawMessage, len(rows))
	for key, value := range rows {
		fields[key] = json.RawMessage(value)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return SystemConfig{}, fmt.Errorf("decode system config: %w", err)
	}
	cfg := DefaultSystemConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SystemConfig{}, fmt.Errorf("decode system config: %w", err)
	}
	return cfg, nil
}
