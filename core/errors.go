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

import "errors"

// Domain validation errors
var (
	// ErrInvalidProfile indicates a ConnectionProfile failed validation.
	ErrInvalidProfile = errors.New("invalid connection profile")

	// ErrEmptyAlias indicates the profile Alias field is empty.
	ErrEmptyAlias = errors.New("alias cannot be empty")

	// ErrEmptyURL indicates the profile URL field is empty.
	ErrEmptyURL = errors.New("url cannot be empty")

	// ErrInvalidURL indicates the profile URL is not a valid redis URI.
	ErrInvalidURL = errors.New("url must use the redis or rediss scheme")

	// ErrEmptyCollection indicates a collection name is empty.
	ErrEmptyCollection = errors.New("collection name cannot be empty")

	// ErrEmptyElement indicates a vector element name is empty.
	ErrEmptyElement = errors.New("element name cannot be empty")

	// ErrEmptyVector indicates a vector has no components.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
