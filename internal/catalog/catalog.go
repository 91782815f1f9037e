// Package catalog holds the ordered set of known hazardous substances used
// to target substance-specific evidence retrieval.
package catalog

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Catalog is a static, ordered list of hazardous-substance names. Order is
// detection priority: the first catalog entry found in a context wins.
type Catalog struct {
	substances []string
}

// Default returns the built-in substance catalog.
func Default() *Catalog {
	return New([]string{
		"toluene",
		"benzene",
		"acetone",
		"sulfuric acid",
		"hydrochloric acid",
		"hydrogen",
		"nitrogen",
	})
}

// New builds a catalog from an ordered substance list. Entries are
// NFC-normalized so that composed and decomposed spellings compare equal.
func New(substances []string) *Catalog {
	c := &Catalog{substances: make([]string, 0, len(substances))}
	for _, s := range substances {
		s = norm.NFC.String(strings.TrimSpace(s))
		if s != "" {
			c.substances = append(c.substances, s)
		}
	}
	return c
}

type catalogFile struct {
	Substances []string `yaml:"substances"`
}

// LoadFile reads a catalog from a YAML file with a top-level `substances`
// list. Order in the file is detection priority.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read file")
	}
	var cf catalogFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, eris.Wrap(err, "catalog: parse yaml")
	}
	if len(cf.Substances) == 0 {
		return nil, eris.New("catalog: no substances listed")
	}
	return New(cf.Substances), nil
}

// Detect returns the first catalog substance present in text as an exact,
// case-sensitive substring, or "" when none match. Catalog order decides
// between multiple hits, not position in the text.
func (c *Catalog) Detect(text string) string {
	text = norm.NFC.String(text)
	for _, s := range c.substances {
		if strings.Contains(text, s) {
			return s
		}
	}
	return ""
}

// Substances returns the catalog entries in priority order.
func (c *Catalog) Substances() []string {
	out := make([]string, len(c.substances))
	copy(out, c.substances)
	return out
}
