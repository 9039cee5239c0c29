package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay is a user-supplied extension to the built-in alias database,
// loaded from a YAML file:
//
//	aliases:
//	  invoice_number:
//	    - "Rechnung Nr"
//	    - "Factura"
//	  client_name:
//	    - "Kunde"
//
// Overlay aliases obey the same invariant as built-ins: a spelling may not
// map to two canonical fields. Conflicts are load errors, not silent
// overrides, so a bad overlay cannot change the meaning of a built-in alias.
type Overlay struct {
	Aliases map[FieldName][]string `yaml:"aliases"`
}

// WithOverlay returns a new catalog consisting of the built-in aliases plus
// the overlay's. The receiver is not modified.
func (c *Catalog) WithOverlay(o Overlay) (*Catalog, error) {
	ext := build()
	for name, spellings := range o.Aliases {
		for _, s := range spellings {
			if err := ext.addAlias(name, s); err != nil {
				return nil, fmt.Errorf("overlay alias for %s: %w", name, err)
			}
		}
	}
	return ext, nil
}

// LoadOverlay reads an overlay YAML file and applies it to the default
// catalog. An empty path returns the default catalog unchanged.
func LoadOverlay(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog overlay: %w", err)
	}

	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing catalog overlay: %w", err)
	}

	return Default().WithOverlay(o)
}
