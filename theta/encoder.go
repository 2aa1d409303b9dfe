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

package theta

import (
	"encoding/binary"
	"io"
)

// Encoder encodes a compact theta sketch to bytes.
type Encoder struct {
	w          io.Writer
	compressed bool
}

// byteCursor writes fixed-width little-endian fields into a preallocated
// buffer while tracking position, so encodeVersion4 and encodeSketch don't
// each hand-roll their own "write then bump offset" bookkeeping.
type byteCursor struct {
	buf []byte
	pos int
}

func (c *byteCursor) writeUint8(v uint8) {
	c.buf[c.pos] = v
	c.pos++
}

func (c *byteCursor) writeUint16(v uint16) {
	binary.LittleEndian.PutUint16(c.buf[c.pos:], v)
	c.pos += 2
}

func (c *byteCursor) writeUint32(v uint32) {
	binary.LittleEndian.PutUint32(c.buf[c.pos:], v)
	c.pos += 4
}

func (c *byteCursor) writeUint64(v uint64) {
	binary.LittleEndian.PutUint64(c.buf[c.pos:], v)
	c.pos += 8
}

func (c *byteCursor) skip(n int) {
	c.pos += n
}

// compactSketchFlags computes the flags byte shared by every on-wire
// preamble layout: always compact and read-only, plus whichever of
// empty/ordered apply to this sketch and encoding.
func compactSketchFlags(sketch *CompactSketch, forceOrdered bool) byte {
	flags := byte(0)
	flags |= 1 << serializationFlagIsCompact
	flags |= 1 << serializationFlagIsReadOnly
	if sketch.IsEmpty() {
		flags |= 1 << serializationFlagIsEmpty
	}
	if forceOrdered || sketch.IsOrdered() {
		flags |= 1 << serializationFlagIsOrdered
	}
	return flags
}

// NewEncoder creates a new encoder.
func NewEncoder(w io.Writer, compressed bool) Encoder {
	return Encoder{w: w, compressed: compressed}
}

// Encode encodes a compact theta sketch to bytes.
func (enc Encoder) Encode(sketch *CompactSketch) error {
	if enc.compressed {
		return enc.encodeWithCompression(sketch)
	}
	return enc.encodeWithoutCompression(sketch)
}

func (enc Encoder) encodeWithCompression(sketch *CompactSketch) error {
	if sketch.isSuitableForCompression() {
		entryBits := sketch.computeEntryBits()
		numEntriesBytes := sketch.numEntriesBytes()

		size := sketch.compressedSerializedSizeBytes(entryBits, numEntriesBytes)
		bytes := make([]byte, size)

		preambleLongs := sketch.preambleLongs(true)
		err := enc.encodeVersion4(sketch, bytes, 0, entryBits, numEntriesBytes, preambleLongs)
		if err != nil {
			return err
		}

		n, err := enc.w.Write(bytes)
		if err != nil {
			return err
		}
		if n != len(bytes) {
			return io.ErrShortWrite
		}
		return nil
	}
	return enc.encodeWithoutCompression(sketch)
}

func (enc Encoder) encodeVersion4(sketch *CompactSketch, bytes []byte, offset int, entryBits, numEntriesBytes, preambleLongs uint8) error {
	c := byteCursor{buf: bytes, pos: offset}

	c.writeUint8(preambleLongs)
	c.writeUint8(CompressedSerialVersion)
	c.writeUint8(CompactSketchType)
	c.writeUint8(entryBits)
	c.writeUint8(numEntriesBytes)
	c.writeUint8(compactSketchFlags(sketch, true))
	c.writeUint16(sketch.seedHash)

	if sketch.IsEstimationMode() {
		c.writeUint64(sketch.theta)
	}

	numEntries := uint32(len(sketch.entries))
	for i := uint8(0); i < numEntriesBytes; i++ {
		c.writeUint8(byte(numEntries >> (i << 3)))
	}

	return packDeltaEncodedEntries(sketch.entries, bytes[c.pos:], entryBits)
}

// packDeltaEncodedEntries writes the delta-from-previous encoding of entries
// using the shared bit-packing codec: full blocks of 8 through
// packBitsBlock8, then any remainder through the streaming packBits cursor.
func packDeltaEncodedEntries(entries []uint64, dest []byte, entryBits uint8) error {
	previous := uint64(0)
	deltas := make([]uint64, 8)
	destOffset := 0

	i := 0
	for i+7 < len(entries) {
		for j := 0; j < 8; j++ {
			deltas[j] = entries[i+j] - previous
			previous = entries[i+j]
		}
		if err := packBitsBlock8(deltas, dest[destOffset:], entryBits); err != nil {
			return err
		}

		destOffset += int(entryBits)
		i += 8
	}

	bytesIdx := 0
	bitOffset := uint8(0)
	for i < len(entries) {
		delta := entries[i] - previous
		previous = entries[i]
		bytesIdx, bitOffset = packBits(delta, entryBits, dest[destOffset:], bytesIdx, bitOffset)
		i++
	}

	return nil
}

func (enc Encoder) encodeWithoutCompression(sketch *CompactSketch) error {
	preambleLongs := sketch.preambleLongs(false)

	bytesSize := sketch.SerializedSizeBytes(false)
	bytes := make([]byte, bytesSize)

	enc.encodeSketch(sketch, bytes, 0, preambleLongs)

	n, err := enc.w.Write(bytes)
	if err != nil {
		return err
	}
	if n != len(bytes) {
		return io.ErrShortWrite
	}
	return nil
}

func (enc Encoder) encodeSketch(sketch *CompactSketch, bytes []byte, offset int, preambleLongs uint8) {
	c := byteCursor{buf: bytes, pos: offset}

	c.writeUint8(preambleLongs)
	c.writeUint8(UncompressedSerialVersion)
	c.writeUint8(CompactSketchType)
	c.skip(2) // unused
	c.writeUint8(compactSketchFlags(sketch, false))
	seedHash, _ := sketch.SeedHash()
	c.writeUint16(seedHash)

	if preambleLongs > 1 {
		c.writeUint32(uint32(len(sketch.entries)))
		c.skip(4) // unused
	}

	if sketch.IsEstimationMode() {
		c.writeUint64(sketch.theta)
	}

	for _, entry := range sketch.entries {
		c.writeUint64(entry)
	}
}
