package rules

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest is the on-disk description of a rulebase: an ordered list of
// sample files to compile. Paths are relative to the manifest's own
// directory unless absolute. Order matters in that a user-defined type must
// be declared (via a "type=" directive) by a line compiled before any sample
// that references it by name: an earlier file, or an earlier line of the
// same file. A reference compiled before the type's first "type=" line is
// looked up as a built-in parser name and fails.
type Manifest struct {
	Samples []string `yaml:"samples"`

	dir string
}

// Files returns the manifest's sample paths resolved against the
// manifest's directory.
func (m *Manifest) Files() []string {
	if m.dir == "" {
		return m.Samples
	}
	resolved := make([]string, len(m.Samples))
	for i, s := range m.Samples {
		if filepath.IsAbs(s) {
			resolved[i] = s
		} else {
			resolved[i] = filepath.Join(m.dir, s)
		}
	}
	return resolved
}

// LoadManifest decodes a rulebase manifest from r. Paths are left
// unresolved; callers that need directory-relative resolution should use
// LoadManifestFile instead.
func LoadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadManifestFile loads a manifest from disk, resolving its Samples
// entries relative to the manifest file's own directory.
func LoadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := LoadManifest(f)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// OpenFile is the default file opener Compile expects: plain os.Open.
func OpenFile(path string) (io.ReadCloser, error) {
	return os.Open(path)
}
