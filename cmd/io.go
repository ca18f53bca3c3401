package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// readInput decodes a JSON or YAML document from path into v. An empty path
// or "-" reads JSON from stdin.
func readInput(path string, stdin io.Reader, v any) error {
	if path == "" || path == "-" {
		if err := json.NewDecoder(stdin).Decode(v); err != nil {
			return eris.Wrap(err, "decode stdin")
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}
