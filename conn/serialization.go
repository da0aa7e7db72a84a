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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/vectorview/core"
)

// Profile records are stored in MUS format: alias, url, then the two
// timestamps as unix microseconds. A zero time is encoded as 0 so it
// round-trips back to time.Time{} exactly.

func encodeTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func decodeTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us)
}

// MarshalProfile serializes a ConnectionProfile to bytes.
func MarshalProfile(profile *core.ConnectionProfile) []byte {
	created := encodeTime(profile.CreatedAt)
	connected := encodeTime(profile.LastConnected)

	size := ord.String.Size(profile.Alias) +
		ord.String.Size(profile.URL) +
		varint.Int64.Size(created) +
		varint.Int64.Size(connected)

	buf := make([]byte, size)
	n := ord.String.Marshal(profile.Alias, buf)
	n += ord.String.Marshal(profile.URL, buf[n:])
	n += varint.Int64.Marshal(created, buf[n:])
	varint.Int64.Marshal(connected, buf[n:])
	return buf
}

// UnmarshalProfile deserializes a ConnectionProfile from bytes.
func UnmarshalProfile(data []byte) (*core.ConnectionProfile, error) {
	alias, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	url, n2, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += n2
	created, n3, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	n += n3
	connected, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}

	return &core.ConnectionProfile{
		Alias:         alias,
		URL:           url,
		CreatedAt:     decodeTime(created),
		LastConnected: decodeTime(connected),
	}, nil
}
