package bank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidBank wraps every schema or consistency problem in a bank.
	ErrInvalidBank = errors.New("invalid question bank")

	// ErrUnsupportedVersion is returned for banks outside the v1 format.
	ErrUnsupportedVersion = errors.New("unsupported bank version")
)

// Encoding selects the on-disk syntax of a bank.
type Encoding int

const (
	YAML Encoding = iota
	JSON
)

// EncodingFor picks the encoding from a file extension; anything that is
// not .json is read as YAML.
func EncodingFor(path string) Encoding {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

// Load reads and validates the bank at path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := Parse(data, EncodingFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a bank document.
func Parse(data []byte, enc Encoding) (*Bank, error) {
	doc, err := decode(data, enc)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	// Re-encode the validated document so both syntaxes share one
	// struct decoding path.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode bank: %w", err)
	}
	var b Bank
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	if err := CheckVersion(b.Version); err != nil {
		return nil, err
	}
	b.normalize()
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// decode turns YAML or JSON into generic JSON values.
func decode(data []byte, enc Encoding) (any, error) {
	var doc any
	switch enc {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse bank json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse bank yaml: %w", err)
		}
		// yaml.v3 may produce non-JSON scalar types; normalise them.
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("parse bank yaml: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		doc = nil
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse bank yaml: %w", err)
		}
	}
	return doc, nil
}

// CheckVersion accepts any semantic version with major version 1. The
// leading "v" is optional.
func CheckVersion(v string) error {
	canonical := "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
	if !semver.IsValid(canonical) {
		return fmt.Errorf("%w: %q is not a semantic version", ErrUnsupportedVersion, v)
	}
	if major := semver.Major(canonical); major != "v1" {
		return fmt.Errorf("%w: %s (this build reads v1)", ErrUnsupportedVersion, major)
	}
	return nil
}

// Save writes b to path, choosing the encoding from the extension.
func Save(path string, b *Bank) error {
	data, err := Marshal(b, EncodingFor(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create bank dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bank: %w", err)
	}
	return nil
}

// Marshal encodes b. A missing version is set to CurrentVersion.
func Marshal(b *Bank, enc Encoding) ([]byte, error) {
	out := *b
	if out.Version == "" {
		out.Version = CurrentVersion
	}
	if enc == JSON {
		data, err := json.MarshalIndent(&out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode bank json: %w", err)
		}
		return append(data, '\n'), nil
	}
	var buf bytes.Buffer
	e := yaml.NewEncoder(&buf)
	e.SetIndent(2)
	if err := e.Encode(&out); err != nil {
		return nil, fmt.Errorf("encode bank yaml: %w", err)
	}
	if err := e.Close(); err != nil {
		return nil, fmt.Errorf("encode bank yaml: %w", err)
	}
	return buf.Bytes(), nil
}
