// Package config loads YAML institution files and builds the configured
// ILS drivers.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/indexdata/ilsdriver/axiell"
	"github.com/indexdata/ilsdriver/cache"
	"github.com/indexdata/ilsdriver/ils"
	"github.com/indexdata/ilsdriver/mikromarc"
)

// Institution is one institution's driver selection plus the section for
// the selected driver.
type Institution struct {
	Driver    string            `yaml:"driver"`
	Axiell    *axiell.Config    `yaml:"axiell"`
	Mikromarc *mikromarc.Config `yaml:"mikromarc"`
}

// File is the top-level institution configuration.
type File struct {
	Institutions map[string]Institution `yaml:"institutions"`
}

// Parse decodes an institution file, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing institution config: %w", err)
	}
	return &f, nil
}

// Load reads and parses an institution file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading institution config: %w", err)
	}
	return Parse(data)
}

// Names lists the configured institutions in stable order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Institutions))
	for name := range f.Institutions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Driver builds the driver for the named institution. client, c and logger
// may be nil, as with the driver constructors.
func (f *File) Driver(name string, client *http.Client, c cache.Cache, logger *slog.Logger) (ils.Driver, error) {
	inst, ok := f.Institutions[name]
	if !ok {
		return nil, &ils.ConfigError{Field: "institutions", Reason: "unknown institution " + name}
	}
	switch inst.Driver {
	case "axiell":
		if inst.Axiell == nil {
			return nil, &ils.ConfigError{Field: "axiell", Reason: "section missing for institution " + name}
		}
		return axiell.New(*inst.Axiell, client, c, logger)
	case "mikromarc":
		if inst.Mikromarc == nil {
			return nil, &ils.ConfigError{Field: "mikromarc", Reason: "section missing for institution " + name}
		}
		return mikromarc.New(*inst.Mikromarc, client, c, logger)
	case "":
		return nil, &ils.ConfigError{Field: "driver", Reason: "must be set for institution " + name}
	}
	return nil, &ils.ConfigError{Field: "driver", Reason: "unknown driver " + inst.Driver}
}
