/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package internal

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/twmb/murmur3"
)

// HashBytes computes the Murmur3 x64 128 hash of data seeded with seed,
// returning the two 64-bit output words (h1, h2).
func HashBytes(data []byte, seed uint64) (uint64, uint64) {
	return murmur3.SeedSum128(seed, seed, data)
}

// HashString hashes a string without copying it into a new byte slice.
// An empty string hashes to (0, 0) and is handled by callers as a no-op.
func HashString(s string, seed uint64) (uint64, uint64) {
	if len(s) == 0 {
		return 0, 0
	}
	b := unsafe.Slice(unsafe.StringData(s), len(s))
	return HashBytes(b, seed)
}

func int64LEBytes(v int64) [8]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return buf
}

// HashInt64 hashes the little-endian bytes of v.
func HashInt64(v int64, seed uint64) (uint64, uint64) {
	buf := int64LEBytes(v)
	return HashBytes(buf[:], seed)
}

// HashUint64 hashes the little-endian bytes of v.
func HashUint64(v uint64, seed uint64) (uint64, uint64) {
	return HashInt64(int64(v), seed)
}

// The narrower integer update overloads all widen to int64 before hashing,
// per the cross-ecosystem determinism rule: a given logical value must hash
// identically regardless of the width of the type that carried it in.
func HashInt32(v int32, seed uint64) (uint64, uint64)  { return HashInt64(int64(v), seed) }
func HashUint32(v uint32, seed uint64) (uint64, uint64) { return HashInt64(int64(v), seed) }
func HashInt16(v int16, seed uint64) (uint64, uint64)  { return HashInt64(int64(v), seed) }
func HashUint16(v uint16, seed uint64) (uint64, uint64) { return HashInt64(int64(v), seed) }
func HashInt8(v int8, seed uint64) (uint64, uint64)   { return HashInt64(int64(v), seed) }
func HashUint8(v uint8, seed uint64) (uint64, uint64)  { return HashInt64(int64(v), seed) }

// CanonicalDouble normalizes -0.0 to +0.0 and collapses every NaN bit
// pattern to the canonical quiet NaN, so that two producers hashing the
// same logical double value always hash the same bytes.
func CanonicalDouble(v float64) float64 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(v) {
		return math.Float64frombits(0x7FF8000000000000)
	}
	return v
}

// HashFloat64 canonicalizes v and hashes its little-endian IEEE-754 bytes.
func HashFloat64(v float64, seed uint64) (uint64, uint64) {
	v = CanonicalDouble(v)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return HashBytes(buf[:], seed)
}

// HashFloat32 widens v to double precision before hashing, per the update
// surface's float-widens-to-double rule.
func HashFloat32(v float32, seed uint64) (uint64, uint64) {
	return HashFloat64(float64(v), seed)
}

// ComputeSeedHash derives the 16-bit seed-compatibility tag used to reject
// cross-seed deserialization (scenario 6): the low 16 bits of the first
// Murmur3 word of the little-endian seed, hashed with hash-seed zero. A
// result of exactly zero is reserved to mark an uninitialized seed hash, so
// seeds that produce it are rejected at construction time.
func ComputeSeedHash(seed int64) (uint16, error) {
	h1, _ := HashInt64(seed, 0)
	seedHash := uint16(h1 & 0xFFFF)
	if seedHash == 0 {
		return 0, fmt.Errorf("the given seed: %d produces a seed hash of zero, choose a different seed", seed)
	}
	return seedHash, nil
}
