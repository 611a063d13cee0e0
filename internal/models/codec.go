package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/desertthunder/practicebook/internal/shared"
)

// EncodeRegiments serializes regiments as the canonical JSON array. A nil slice encodes as [].
func EncodeRegiments(regiments []Regiment) ([]byte, error) {
	if regiments == nil {
		regiments = []Regiment{}
	}
	data, err := json.Marshal(regiments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode regiments: %w", err)
	}
	return data, nil
}

// DecodeRegiments parses the canonical JSON array, rejecting unknown fields and invalid records.
func DecodeRegiments(data []byte) ([]Regiment, error) {
	var regiments []Regiment
	if err := decodeStrict(data, &regiments); err != nil {
		return nil, err
	}

	for i := range regiments {
		if err := regiments[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: regiment %d: %w", shared.ErrInvalidPayload, i, err)
		}
	}

	if regiments == nil {
		regiments = []Regiment{}
	}
	return regiments, nil
}

// DecodeLegacyRegiments parses a JSON string whose content is the canonical array.
func DecodeLegacyRegiments(data []byte) ([]Regiment, error) {
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("%w: expected JSON string: %v", shared.ErrInvalidPayload, err)
	}
	return DecodeRegiments([]byte(inner))
}

// DecodeAnyRegiments accepts either payload shape, choosing by the first non-space byte.
func DecodeAnyRegiments(data []byte) ([]Regiment, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return DecodeLegacyRegiments(trimmed)
	}
	return DecodeRegiments(trimmed)
}

// DecodeRegiment parses a single regiment object with the same strictness as [DecodeRegiments].
func DecodeRegiment(r io.Reader) (*Regiment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read regiment: %w", shared.ErrInvalidPayload, err)
	}

	var regiment Regiment
	if err := decodeStrict(data, &regiment); err != nil {
		return nil, err
	}
	if err := regiment.Validate(); err != nil {
		return nil, err
	}
	return &regiment, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidPayload, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected trailing data", shared.ErrInvalidPayload)
	}
	return nil
}
