// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/ekrili/internal/logging"
)

// Seed is the reference data file: property types and the location tree.
//
//	types: [Appartements, Villas]
//	states:
//	  - name: Tunis
//	    delegations:
//	      - name: Carthage
//	        jurisdictions: [Salammbo, Byrsa]
type Seed struct {
	Types  []string    `yaml:"types"`
	States []SeedState `yaml:"states"`
}

// SeedState is a region with its sub-regions.
type SeedState struct {
	Name        string           `yaml:"name"`
	Delegations []SeedDelegation `yaml:"delegations"`
}

// SeedDelegation is a sub-region with its districts.
type SeedDelegation struct {
	Name          string   `yaml:"name"`
	Jurisdictions []string `yaml:"jurisdictions"`
}

// LoadSeedFile reads and validates a seed YAML file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Validate rejects blank names and duplicates within one parent.
func (s *Seed) Validate() error {
	if err := uniqueNames("type", "", s.Types); err != nil {
		return err
	}

	states := make([]string, len(s.States))
	for i, st := range s.States {
		states[i] = st.Name
		delegations := make([]string, len(st.Delegations))
		for j, d := range st.Delegations {
			delegations[j] = d.Name
			if err := uniqueNames("jurisdiction", d.Name, d.Jurisdictions); err != nil {
				return err
			}
		}
		if err := uniqueNames("delegation", st.Name, delegations); err != nil {
			return err
		}
	}
	return uniqueNames("state", "", states)
}

func uniqueNames(category, parent string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: blank %s name under %q", ErrInvalidSeed, category, parent)
		}
		if seen[n] {
			return fmt.Errorf("%w: duplicate %s %q under %q", ErrInvalidSeed, category, n, parent)
		}
		seen[n] = true
	}
	return nil
}

// ApplySeed inserts the seed's terms that are not yet present. Existing
// terms and their ids are left untouched, so applying the same seed twice
// is a no-op.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed) (err error) {
	defer db.observe("apply_seed", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, name := range seed.Types {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO property_types (name) VALUES (?) ON CONFLICT DO NOTHING`, name); err != nil {
			return fmt.Errorf("failed to seed type %q: %w", name, err)
		}
	}

	for _, st := range seed.States {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO states (name) VALUES (?) ON CONFLICT DO NOTHING`, st.Name); err != nil {
			return fmt.Errorf("failed to seed state %q: %w", st.Name, err)
		}
		for _, d := range st.Delegations {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO delegations (state_id, name)
				SELECT id, ? FROM states WHERE name = ?
				ON CONFLICT DO NOTHING`, d.Name, st.Name); err != nil {
				return fmt.Errorf("failed to seed delegation %q: %w", d.Name, err)
			}
			for _, j := range d.Jurisdictions {
				if _, err = tx.ExecContext(ctx, `
					INSERT INTO jurisdictions (delegation_id, name)
					SELECT d.id, ? FROM delegations d JOIN states s ON s.id = d.state_id
					WHERE d.name = ? AND s.name = ?
					ON CONFLICT DO NOTHING`, j, d.Name, st.Name); err != nil {
					return fmt.Errorf("failed to seed jurisdiction %q: %w", j, err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	logging.Info().
		Int("types", len(seed.Types)).
		Int("states", len(seed.States)).
		Msg("vocabulary seed applied")
	return nil
}
