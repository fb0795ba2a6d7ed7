package library

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CatalogItem is one item record as written in a catalog file.
type CatalogItem struct {
	ID      string `yaml:"id"`
	Kind    string `yaml:"kind"`
	Title   string `yaml:"title"`
	Creator string `yaml:"creator"`
}

// CatalogPatron is one patron record as written in a catalog file.
type CatalogPatron struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	PIN  string `yaml:"pin,omitempty"`
}

// Catalog is the set of records used to populate a Ledger.
type Catalog struct {
	Items   []CatalogItem   `yaml:"items"`
	Patrons []CatalogPatron `yaml:"patrons"`
}

// LoadCatalog reads and validates a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates YAML catalog data.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "parse catalog")
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid catalog")
	}
	return &c, nil
}

// Validate rejects empty IDs, unknown kinds and IDs used twice.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Items))
	for i, it := range c.Items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			return errors.Errorf("item #%d has no id", i+1)
		}
		if _, ok := ParseKind(strings.ToLower(strings.TrimSpace(it.Kind))); !ok {
			return errors.Errorf("item %q has unknown kind %q", id, it.Kind)
		}
		if seen[id] {
			return errors.Errorf("item id %q is used twice", id)
		}
		seen[id] = true
	}

	seen = make(map[string]bool, len(c.Patrons))
	for i, p := range c.Patrons {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return errors.Errorf("patron #%d has no id", i+1)
		}
		if seen[id] {
			return errors.Errorf("patron id %q is used twice", id)
		}
		seen[id] = true
	}
	return nil
}

// Populate adds every record to l and returns the PIN hashes of the patrons
// that have one.
func (c *Catalog) Populate(l *Ledger) (PINBook, error) {
	for _, it := range c.Items {
		kind, _ := ParseKind(strings.ToLower(strings.TrimSpace(it.Kind)))
		item := newItem(kind, strings.TrimSpace(it.ID), it.Title, it.Creator)
		if err := l.AddItem(item); err != nil {
			return nil, errors.Wrapf(err, "add item %q", it.ID)
		}
	}

	pins := make(PINBook)
	for _, p := range c.Patrons {
		id := strings.TrimSpace(p.ID)
		if err := l.AddPatron(NewPatron(id, p.Name)); err != nil {
			return nil, errors.Wrapf(err, "add patron %q", id)
		}
		if strings.TrimSpace(p.PIN) == "" {
			continue
		}
		hash, err := HashPIN(p.PIN)
		if err != nil {
			return nil, errors.Wrapf(err, "patron %q", id)
		}
		pins[id] = hash
	}
	return pins, nil
}
