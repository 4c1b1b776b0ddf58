package scene

import (
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/morphit/lexicon"
	"gopkg.in/yaml.v3"
)

// Manifest describes the characters of a scene and the parameters each
// one exposes.
//
//	characters:
//	  - name: mb_male
//	    parameters: [L1_Asian, L2__Eyes_Size_max]
//	  - name: mb_female
//	    lexicon: true
type Manifest struct {
	Characters []ManifestEntry `yaml:"characters"`
}

// ManifestEntry is one character in a manifest.
type ManifestEntry struct {
	Name       string   `yaml:"name"`
	Parameters []string `yaml:"parameters"`
	// Lexicon adds every parameter name the lexicon can emit.
	Lexicon bool `yaml:"lexicon"`
}

// DefaultManifest describes the two stock characters, each exposing every
// parameter lex can emit.
func DefaultManifest(lex *lexicon.Lexicon, names ...string) *Manifest {
	if len(names) == 0 {
		names = []string{"mb_male", "mb_female"}
	}
	params := lex.ParameterNames()

	m := &Manifest{}
	for _, name := range names {
		m.Characters = append(m.Characters, ManifestEntry{
			Name:       name,
			Parameters: append([]string(nil), params...),
		})
	}
	return m
}

// LoadManifest reads a YAML manifest. Entries with lexicon set are
// expanded with lex's parameter names.
func LoadManifest(path string, lex *lexicon.Lexicon) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	for i := range m.Characters {
		if m.Characters[i].Lexicon && lex != nil {
			m.Characters[i].Parameters = append(m.Characters[i].Parameters, lex.ParameterNames()...)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks for empty or duplicate names.
func (m *Manifest) Validate() error {
	if m == nil || len(m.Characters) == 0 {
		return fmt.Errorf("%w: no characters", ErrInvalidManifest)
	}

	seen := make(map[string]struct{}, len(m.Characters))
	for _, entry := range m.Characters {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("%w: character without a name", ErrInvalidManifest)
		}
		if _, dup := seen[entry.Name]; dup {
			return fmt.Errorf("%w: duplicate character %s", ErrInvalidManifest, entry.Name)
		}
		seen[entry.Name] = struct{}{}

		for _, p := range entry.Parameters {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%w: %s has an empty parameter name", ErrInvalidManifest, entry.Name)
			}
		}
	}
	return nil
}
