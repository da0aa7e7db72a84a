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


// Package conn manages server connections for the console.
//
// Connection establishment is bounded in both directions: each attempt
// runs under a per-attempt timeout that is propagated into the dial as
// context cancellation (a timed-out attempt actually stops, it does not
// linger in the background), and the attempt count is capped. A fixed
// delay separates attempts; there is no backoff, because this is a
// foreground, user-initiated action where a second quick try is the only
// retry worth making.
//
// Live connections are held in a Manager: an explicitly owned registry
// created at startup and torn down with Close, never a package global.
// Successful connections are recorded in a RecentStore so the console can
// offer recently used servers; failed ones leave no trace.
package conn
