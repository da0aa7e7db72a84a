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


package core

import (
	"fmt"
	"net/url"
)

// ValidateProfile validates a ConnectionProfile according to domain rules.
//
// Validation rules:
//   - Alias must not be empty
//   - URL must not be empty and must parse as a redis:// or rediss:// URI
//
// NOT validated (populated by the connection manager):
//   - CreatedAt (set on first save)
//   - LastConnected (zero until the first successful connection)
func ValidateProfile(profile *ConnectionProfile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if profile.Alias == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyAlias)
	}

	if profile.URL == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyURL)
	}

	if !IsValidServerURL(profile.URL) {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrInvalidURL)
	}

	return nil
}

// IsValidServerURL reports whether raw parses as a redis:// or rediss:// URI
// with a host component.
func IsValidServerURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return false
	}
	return u.Host != ""
}

// ValidateVector validates a named vector destined for a vector set.
func ValidateVector(element string, vector []float32) error {
	if element == "" {
		return ErrEmptyElement
	}
	if len(vector) == 0 {
		return ErrEmptyVector
	}
	return nil
}
