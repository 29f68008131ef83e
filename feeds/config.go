package feeds

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// sourceFile is the on-disk catalog shape: one [[source]] table per source.
type sourceFile struct {
	Source []Descriptor `toml:"source"`
}

// LoadSources reads a source catalog from a TOML file. An empty path means
// the compiled-in catalog. Descriptors come back validated, deduplicated
// by key and with defaults applied.
func LoadSources(path string) ([]Descriptor, error) {
	if path == "" {
		return LoadDescriptors(DefaultSources())
	}
	var file sourceFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("read source config: %w", err)
	}
	if len(file.Source) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSources)
	}
	out, err := LoadDescriptors(file.Source)
	if err != nil {
		return nil, fmt.Errorf("source config %s: %w", path, err)
	}
	return out, nil
}

// LoadDescriptors validates a catalog and applies defaults to every entry.
func LoadDescriptors(sources []Descriptor) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, d := range sources {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.Key] {
			return nil, fmt.Errorf("duplicate source key %q", d.Key)
		}
		seen[d.Key] = true
		out = append(out, d.withDefaults())
	}
	return out, nil
}
