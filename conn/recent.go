// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package conn

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/vectorview/core"
)

const profilePrefix = "connprof:"

func makeProfileKey(alias string) []byte {
	return []byte(profilePrefix + alias)
}

// RecentStore persists connection profiles locally so the console can
// offer recently used servers on startup.
type RecentStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenRecentStore opens the profile database at the specified path,
// creating the directory if it doesn't exist. inMemory skips the
// filesystem entirely, for tests.
func OpenRecentStore(filePath string, inMemory bool) (*RecentStore, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &RecentStore{
		db:     db,
		logger: slog.Default().With("component", "recent-store"),
	}, nil
}

// Save validates and writes a profile, overwriting any existing profile
// with the same alias. CreatedAt is set if zero.
func (s *RecentStore) Save(profile *core.ConnectionProfile) error {
	if err := core.ValidateProfile(profile); err != nil {
		return err
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeProfileKey(profile.Alias), MarshalProfile(profile))
	})
}

// Get retrieves a profile by alias. Returns ErrProfileNotFound if absent.
func (s *RecentStore) Get(alias string) (*core.ConnectionProfile, error) {
	var profile *core.ConnectionProfile

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(makeProfileKey(alias))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			profile, err = UnmarshalProfile(val)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// List returns all saved profiles, most recently connected first.
// Never-connected profiles sort last, newest CreatedAt first.
func (s *RecentStore) List() ([]*core.ConnectionProfile, error) {
	var profiles []*core.ConnectionProfile

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(profilePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				profile, err := UnmarshalProfile(val)
				if err != nil {
					return err
				}
				profiles = append(profiles, profile)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(profiles, func(i, j int) bool {
		a, b := profiles[i], profiles[j]
		if !a.LastConnected.Equal(b.LastConnected) {
			return a.LastConnected.After(b.LastConnected)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return profiles, nil
}

// Delete removes a profile by alias. Missing profiles are not an error.
func (s *RecentStore) Delete(alias string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(makeProfileKey(alias))
	})
}

// TouchConnected upserts a profile and stamps LastConnected. Called by the
// manager after a successful connection; failed connections never reach
// this.
func (s *RecentStore) TouchConnected(alias, url string, at time.Time) error {
	profile, err := s.Get(alias)
	if err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			return err
		}
		profile = &core.ConnectionProfile{Alias: alias, URL: url, CreatedAt: at}
	}
	profile.URL = url
	profile.LastConnected = at
	return s.Save(profile)
}

// Close closes the underlying database.
func (s *RecentStore) Close() error {
	return s.db.Close()
}
