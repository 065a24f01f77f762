package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// LoadJSON decodes the file at path over target. Fields missing from the
// file keep whatever target already holds, so callers pass in defaults.
func LoadJSON(path string, target interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := DecodeStrictJSON(f, target); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// DecodeStrictJSON decodes exactly one JSON value from r, rejecting unknown
// fields and anything after the value.
func DecodeStrictJSON(r io.Reader, target interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("decode json: unexpected data after top-level value")
	}
	return nil
}
