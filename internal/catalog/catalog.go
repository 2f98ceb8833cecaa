// Package catalog loads the built-in seed venues and service packages.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

//go:embed seed.yaml
var embedded []byte

// Catalog is the read-only seed data.
type Catalog struct {
	Owners   []Owner                  `yaml:"owners"`
	Venues   []venue.Venue            `yaml:"venues"`
	Packages []servicepackage.Package `yaml:"packages"`
}

// Owner is the account a seed venue's ownerId points at. The server provisions
// these accounts so seed venues have someone who can manage them.
type Owner struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML seed data. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	return &c, nil
}

// Validate checks every record and reports all problems at once.
func (c *Catalog) Validate() error {
	var errs []error

	ownerIDs := make(map[string]bool, len(c.Owners))
	emails := make(map[string]bool, len(c.Owners))
	for i, o := range c.Owners {
		label := fmt.Sprintf("owners[%d] %s", i, o.ID)
		if o.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", label))
		} else if ownerIDs[o.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id", label))
		}
		ownerIDs[o.ID] = true
		email := strings.ToLower(strings.TrimSpace(o.Email))
		if email == "" {
			errs = append(errs, fmt.Errorf("%s: email is required", label))
		} else if emails[email] {
			errs = append(errs, fmt.Errorf("%s: duplicate email", label))
		}
		emails[email] = true
	}

	venueIDs := make(map[string]bool, len(c.Venues))
	for i, v := range c.Venues {
		label := fmt.Sprintf("venues[%d] %s", i, v.ID)
		if v.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", label))
		} else if venueIDs[v.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id", label))
		}
		venueIDs[v.ID] = true
		if v.OwnerID != "" && !ownerIDs[v.OwnerID] {
			errs = append(errs, fmt.Errorf("%s: unknown owner %q", label, v.OwnerID))
		}
		if err := venue.Validate(v); err != nil {
			errs = append(errs, describe(label, err))
		}
	}

	packageIDs := make(map[string]bool, len(c.Packages))
	for i, p := range c.Packages {
		label := fmt.Sprintf("packages[%d] %s", i, p.ID)
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("%s: id is required", label))
		} else if packageIDs[p.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id", label))
		}
		packageIDs[p.ID] = true
		if !venueIDs[p.VenueID] {
			errs = append(errs, fmt.Errorf("%s: unknown venue %q", label, p.VenueID))
		}
		if err := servicepackage.Validate(p); err != nil {
			errs = append(errs, describe(label, err))
		}
	}

	return errors.Join(errs...)
}

func describe(label string, err error) error {
	var verr *apperror.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("%s: %w", label, err)
	}
	parts := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Errorf("%s: %s", label, strings.Join(parts, "; "))
}
