// Package source turns files on disk into dictionary, config store and secret store sources
// for a fastedge host. Flat files (JSON, YAML and dotenv) are read once into memory; SQLite
// databases are queried on every lookup.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fastedge.dev"
)

// File reads a flat key/value file, picking the format from its extension: .json, .yaml/.yml,
// or .env. Values must be scalars; numbers and booleans are kept in their textual form.
func File(path string) (map[string]string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return JSONFile(path)
	case ".yaml", ".yml":
		return YAMLFile(path)
	case ".env":
		return godotenv.Read(path)
	default:
		return nil, fmt.Errorf("%s: unsupported file type %q", path, ext)
	}
}

// JSONFile reads a JSON object of scalar values.
func JSONFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flatten(path, raw)
}

// YAMLFile reads a YAML mapping of scalar values.
func YAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return flatten(path, raw)
}

func flatten(path string, raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number, bool, int, int64, uint64, float64:
			out[k] = fmt.Sprint(v)
		case nil:
			out[k] = ""
		default:
			return nil, fmt.Errorf("%s: value for %q is not a scalar", path, k)
		}
	}
	return out, nil
}

// Open resolves path into a lookup function for the store called name. SQLite databases
// (.db, .sqlite, .sqlite3) are read from the table with the same name as the store; the
// returned Closer releases the database. Anything else is read with File.
func Open(name, path string) (fastedge.LookupFunc, io.Closer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		db, err := OpenSQLite(path, name)
		if err != nil {
			return nil, nil, err
		}
		return db.Lookup, db, nil
	}

	m, err := File(path)
	if err != nil {
		return nil, nil, err
	}
	return fastedge.MapLookup(m), nopCloser{}, nil
}

// Secrets reads a flat file of secrets with File.
func Secrets(path string) (fastedge.SecretLookupFunc, error) {
	m, err := File(path)
	if err != nil {
		return nil, err
	}
	return fastedge.MapSecrets(m), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
