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


// Package vset is a thin client for the vector set commands of a Redis
// server running the vector-sets module (VADD, VSIM, VREM, VCARD, VDIM,
// VEMB, VLINKS, VINFO).
//
// The package computes nothing itself: indexing, similarity and
// quantization all happen server side. It only assembles command
// arguments, issues them through a Doer, and parses replies into core
// types.
package vset
