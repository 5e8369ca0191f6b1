/* Copyright © 2025 ConfusedSammie. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package store persists bot state as JSON files on disk: registered
// player tags, community events, and the previous leaderboard snapshot.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonFile serializes all access to one JSON-encoded file. Writes
// replace the file atomically via a temp file and rename; a missing
// file reads as the zero value.
type jsonFile[T any] struct {
	path string
	mtx  sync.Mutex
}

func newJSONFile[T any](path string) *jsonFile[T] {
	return &jsonFile[T]{path: path}
}

func (f *jsonFile[T]) load() (T, error) {
	var value T

	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return value, nil
	}
	if err != nil {
		return value, fmt.Errorf("unable to read %v: %w", f.path, err)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("unable to parse %v: %w", f.path, err)
	}
	return value, nil
}

func (f *jsonFile[T]) save(value T) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode %v: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("unable to write %v: %w", f.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write %v: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write %v: %w", f.path, err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("unable to replace %v: %w", f.path, err)
	}
	return nil
}

// view runs fn against the current contents under the lock.
func (f *jsonFile[T]) view(fn func(T)) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	value, err := f.load()
	if err != nil {
		return err
	}
	fn(value)
	return nil
}

// update runs a read-modify-write cycle under the lock. The file is
// rewritten only when fn returns nil.
func (f *jsonFile[T]) update(fn func(*T) error) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	value, err := f.load()
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return f.save(value)
}
