// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/finpanel/finpanel-tui/internal/util"
)

// Store persists the session record as a single JSON file. Absence of the
// file is always a legal state; the store never keeps a partial record.
type Store struct {
	path string
}

// NewStore creates a store writing to the given path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStorePath returns the default session record location.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".finpanel", "session.json")
	}
	return filepath.Join(home, ".finpanel", "session.json")
}

// Path returns the store's file path.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted record. A missing file returns (nil, nil). A
// corrupt or incomplete record is deleted and also returns (nil, nil): per
// the session invariant, anything short of a complete record is absent.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session record: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("session: discarding corrupt record: %v", err)
		if err := st.Delete(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !s.Complete() {
		log.Printf("session: discarding incomplete record")
		if err := st.Delete(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &s, nil
}

// Save persists the record, fully replacing any previous one. The write is
// atomic and the file readable by the owner only.
func (st *Store) Save(s *Session) error {
	if !s.Complete() {
		return fmt.Errorf("refusing to persist incomplete session")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := util.AtomicWriteFile(st.path, data, 0600); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Delete removes the persisted record. Deleting an absent record is not an
// error.
func (st *Store) Delete() error {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
