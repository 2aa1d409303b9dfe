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

package cpc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/coupongraph/sketches/internal"
)

// Byte layout of the 8-byte low preamble, shared by every format.
const (
	loFieldPreInts  = 0
	loFieldSerVer   = 1
	loFieldFamily   = 2
	loFieldLgK      = 3
	loFieldFiCol    = 4
	loFieldFlags    = 5
	loFieldSeedHash = 6 // 2 bytes, little-endian

	loPreambleBytes = 8

	serVer             = 1
	compressedFlagMask = 0x02
)

// hiField identifies a field that appears after the low preamble, at an
// offset that depends on the sketch's format.
type hiField int

const (
	hiFieldNumCoupons hiField = iota
	hiFieldNumSv
	hiFieldSvLength
	hiFieldWLength
	hiFieldKxp
	hiFieldHipAccum
)

// fieldWidthWords is the width of a hi-field in 4-byte words. kxp and the HIP
// accumulator are stored as float64 and so take two words.
func fieldWidthWords(field hiField) int {
	switch field {
	case hiFieldKxp, hiFieldHipAccum:
		return 2
	default:
		return 1
	}
}

// formatFields lists, in on-wire order, the hi-fields a format carries.
func formatFields(format CpcFormat) []hiField {
	switch format {
	case CpcFormatSparseHybridMerged:
		return []hiField{hiFieldNumCoupons, hiFieldSvLength}
	case CpcFormatSparseHybridHip:
		return []hiField{hiFieldNumCoupons, hiFieldSvLength, hiFieldKxp, hiFieldHipAccum}
	case CpcFormatPinnedSlidingMergedNosv:
		return []hiField{hiFieldNumCoupons, hiFieldWLength}
	case CpcFormatPinnedSlidingHipNosv:
		return []hiField{hiFieldNumCoupons, hiFieldWLength, hiFieldKxp, hiFieldHipAccum}
	case CpcFormatPinnedSlidingMerged:
		return []hiField{hiFieldNumCoupons, hiFieldNumSv, hiFieldSvLength, hiFieldWLength}
	case CpcFormatPinnedSlidingHip:
		return []hiField{hiFieldNumCoupons, hiFieldNumSv, hiFieldSvLength, hiFieldWLength, hiFieldKxp, hiFieldHipAccum}
	default:
		return nil
	}
}

// getDefinedPreInts is the number of 4-byte words a format's preamble
// (low preamble plus hi-fields) occupies, before any stream data.
func getDefinedPreInts(format CpcFormat) int {
	words := 2
	for _, f := range formatFields(format) {
		words += fieldWidthWords(f)
	}
	return words
}

// getHiFieldOffset returns the byte offset of field within a preamble of the
// given format, or an error if that format does not carry the field.
func getHiFieldOffset(format CpcFormat, field hiField) (int, error) {
	wordOffset := 2
	for _, f := range formatFields(format) {
		if f == field {
			return wordOffset * 4, nil
		}
		wordOffset += fieldWidthWords(f)
	}
	return 0, fieldError(format, field)
}

func fieldError(format CpcFormat, field hiField) error {
	return fmt.Errorf("field %d is not present in format %d", field, format)
}

// hiFieldByteOffset is the quiet counterpart of getHiFieldOffset: -1 means
// the field is absent from this format rather than an error to propagate.
func hiFieldByteOffset(format CpcFormat, field hiField) int {
	off, err := getHiFieldOffset(format, field)
	if err != nil {
		return -1
	}
	return off
}

func checkCapacity(have, need int) error {
	if have < need {
		return fmt.Errorf("insufficient capacity: have %d bytes, need %d", have, need)
	}
	return nil
}

func checkLoPreamble(mem []byte) error {
	if len(mem) < loPreambleBytes {
		return fmt.Errorf("preamble too short: need at least %d bytes, got %d", loPreambleBytes, len(mem))
	}
	if got := getFamilyId(mem); got != internal.FamilyEnum.CPC.Id {
		return fmt.Errorf("invalid family id: expected %d, got %d", internal.FamilyEnum.CPC.Id, got)
	}
	return nil
}

func getPreInts(mem []byte) int    { return int(mem[loFieldPreInts]) }
func getSerVer(mem []byte) int     { return int(mem[loFieldSerVer]) }
func getFamilyId(mem []byte) int   { return int(mem[loFieldFamily]) }
func getLgK(mem []byte) int        { return int(mem[loFieldLgK]) }
func getFiCol(mem []byte) int      { return int(mem[loFieldFiCol]) }
func getFlags(mem []byte) int      { return int(mem[loFieldFlags]) }
func getFormat(mem []byte) CpcFormat {
	return CpcFormat(getFlags(mem) >> 2)
}
func getSeedHash(mem []byte) uint16 {
	return binary.LittleEndian.Uint16(mem[loFieldSeedHash:])
}
func isCompressed(mem []byte) bool {
	return getFlags(mem)&compressedFlagMask != 0
}

// hasHip reports whether the preamble carries a HIP accumulator. In the
// format enum, HIP formats are the odd-numbered ones; EMPTY_HIP is odd but
// has no hi-fields, so it carries none.
func hasHip(mem []byte) bool {
	format := getFormat(mem)
	return format != CpcFormatEmptyHip && int(format)&1 == 1
}

func getNumCoupons(mem []byte) uint64 {
	off := hiFieldByteOffset(getFormat(mem), hiFieldNumCoupons)
	if off < 0 {
		return 0
	}
	return uint64(binary.LittleEndian.Uint32(mem[off:]))
}

func getNumSV(mem []byte) uint64 {
	off := hiFieldByteOffset(getFormat(mem), hiFieldNumSv)
	if off < 0 {
		return 0
	}
	return uint64(binary.LittleEndian.Uint32(mem[off:]))
}

func getSvLengthInts(mem []byte) int {
	off := hiFieldByteOffset(getFormat(mem), hiFieldSvLength)
	if off < 0 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(mem[off:]))
}

func getWLengthInts(mem []byte) int {
	off := hiFieldByteOffset(getFormat(mem), hiFieldWLength)
	if off < 0 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(mem[off:]))
}

func getKxP(mem []byte) float64 {
	off := hiFieldByteOffset(getFormat(mem), hiFieldKxp)
	if off < 0 {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(mem[off:]))
}

func getHipAccum(mem []byte) float64 {
	off := hiFieldByteOffset(getFormat(mem), hiFieldHipAccum)
	if off < 0 {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(mem[off:]))
}

func formatHasSv(format CpcFormat) bool {
	switch format {
	case CpcFormatSparseHybridMerged, CpcFormatSparseHybridHip, CpcFormatPinnedSlidingMerged, CpcFormatPinnedSlidingHip:
		return true
	}
	return false
}

func formatHasWindow(format CpcFormat) bool {
	switch format {
	case CpcFormatPinnedSlidingMergedNosv, CpcFormatPinnedSlidingHipNosv, CpcFormatPinnedSlidingMerged, CpcFormatPinnedSlidingHip:
		return true
	}
	return false
}

// getWStreamOffset returns the byte offset of the window stream, which
// always immediately follows the preamble when present.
func getWStreamOffset(mem []byte) (int, error) {
	format := getFormat(mem)
	if !formatHasWindow(format) {
		return 0, fmt.Errorf("format %d carries no window stream", format)
	}
	defined := getDefinedPreInts(format)
	if getPreInts(mem) != defined {
		return 0, fmt.Errorf("possible corruption: preamble ints: expected %d, got %d", defined, getPreInts(mem))
	}
	return defined * 4, nil
}

// getSvStreamOffset returns the byte offset of the surprising-value stream,
// which follows the window stream when both are present.
func getSvStreamOffset(mem []byte) (int, error) {
	format := getFormat(mem)
	if !formatHasSv(format) {
		return 0, fmt.Errorf("format %d carries no surprising-value stream", format)
	}
	defined := getDefinedPreInts(format)
	if getPreInts(mem) != defined {
		return 0, fmt.Errorf("possible corruption: preamble ints: expected %d, got %d", defined, getPreInts(mem))
	}
	offset := defined * 4
	if formatHasWindow(format) {
		offset += getWLengthInts(mem) * 4
	}
	return offset, nil
}

func putLowPreamble(mem []byte, format CpcFormat, preInts, lgK, fiCol int, seedHash uint16) {
	mem[loFieldPreInts] = byte(preInts)
	mem[loFieldSerVer] = byte(serVer)
	mem[loFieldFamily] = byte(internal.FamilyEnum.CPC.Id)
	mem[loFieldLgK] = byte(lgK)
	mem[loFieldFiCol] = byte(fiCol)
	mem[loFieldFlags] = byte(int(format)<<2) | compressedFlagMask
	binary.LittleEndian.PutUint16(mem[loFieldSeedHash:], seedHash)
}

func putHiFieldInt(mem []byte, format CpcFormat, field hiField, value int) error {
	off, err := getHiFieldOffset(format, field)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(mem[off:], uint32(value))
	return nil
}

func putHiFieldFloat(mem []byte, format CpcFormat, field hiField, value float64) error {
	off, err := getHiFieldOffset(format, field)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(mem[off:], math.Float64bits(value))
	return nil
}

func putIntStream(dst []byte, stream []int) {
	for i, v := range stream {
		binary.LittleEndian.PutUint32(dst[i*4:], uint32(v))
	}
}

func getIntStream(src []byte, length int) []int {
	out := make([]int, length)
	for i := 0; i < length; i++ {
		out[i] = int(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}

func putEmptyMerged(mem []byte, lgK int, seedHash uint16) error {
	return putEmptyFormat(mem, CpcFormatEmptyMerged, lgK, seedHash)
}

func putEmptyHip(mem []byte, lgK int, seedHash uint16) error {
	return putEmptyFormat(mem, CpcFormatEmptyHip, lgK, seedHash)
}

func putEmptyFormat(mem []byte, format CpcFormat, lgK int, seedHash uint16) error {
	if err := checkLgK(lgK); err != nil {
		return err
	}
	preInts := getDefinedPreInts(format)
	if err := checkCapacity(len(mem), preInts*4); err != nil {
		return err
	}
	putLowPreamble(mem, format, preInts, lgK, 0, seedHash)
	return nil
}

func putSparseHybridMerged(mem []byte, lgK, numCoupons, csvLength int, seedHash uint16, csvStream []int) error {
	return putSparseHybrid(mem, CpcFormatSparseHybridMerged, lgK, numCoupons, csvLength, 0, 0, seedHash, csvStream)
}

func putSparseHybridHip(mem []byte, lgK, numCoupons, csvLength int, kxp, hipAccum float64, seedHash uint16, csvStream []int) error {
	return putSparseHybrid(mem, CpcFormatSparseHybridHip, lgK, numCoupons, csvLength, kxp, hipAccum, seedHash, csvStream)
}

func putSparseHybrid(mem []byte, format CpcFormat, lgK, numCoupons, csvLength int, kxp, hipAccum float64, seedHash uint16, csvStream []int) error {
	if err := checkLgK(lgK); err != nil {
		return err
	}
	preInts := getDefinedPreInts(format)
	putLowPreamble(mem, format, preInts, lgK, 0, seedHash)
	if err := checkCapacity(len(mem), (preInts+csvLength)*4); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldNumCoupons, numCoupons); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldSvLength, csvLength); err != nil {
		return err
	}
	if format == CpcFormatSparseHybridHip {
		if err := putHiFieldFloat(mem, format, hiFieldKxp, kxp); err != nil {
			return err
		}
		if err := putHiFieldFloat(mem, format, hiFieldHipAccum, hipAccum); err != nil {
			return err
		}
	}
	putIntStream(mem[preInts*4:], csvStream)
	return nil
}

func putPinnedSlidingMergedNoSv(mem []byte, lgK, fiCol, numCoupons, cwLength int, seedHash uint16, cwStream []int) error {
	return putPinnedSlidingNoSv(mem, CpcFormatPinnedSlidingMergedNosv, lgK, fiCol, numCoupons, cwLength, 0, 0, seedHash, cwStream)
}

func putPinnedSlidingHipNoSv(mem []byte, lgK, fiCol, numCoupons, cwLength int, kxp, hipAccum float64, seedHash uint16, cwStream []int) error {
	return putPinnedSlidingNoSv(mem, CpcFormatPinnedSlidingHipNosv, lgK, fiCol, numCoupons, cwLength, kxp, hipAccum, seedHash, cwStream)
}

// putPinnedSlidingNoSv writes the low preamble unconditionally before
// validating cwLength, so a rejected call still leaves the compressed flag
// set in mem.
func putPinnedSlidingNoSv(mem []byte, format CpcFormat, lgK, fiCol, numCoupons, cwLength int, kxp, hipAccum float64, seedHash uint16, cwStream []int) error {
	if err := checkLgK(lgK); err != nil {
		return err
	}
	preInts := getDefinedPreInts(format)
	putLowPreamble(mem, format, preInts, lgK, fiCol, seedHash)
	if cwLength <= 0 {
		return fmt.Errorf("pinned/sliding sketch must carry a non-empty window stream")
	}
	if err := checkCapacity(len(mem), (preInts+cwLength)*4); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldNumCoupons, numCoupons); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldWLength, cwLength); err != nil {
		return err
	}
	if format == CpcFormatPinnedSlidingHipNosv {
		if err := putHiFieldFloat(mem, format, hiFieldKxp, kxp); err != nil {
			return err
		}
		if err := putHiFieldFloat(mem, format, hiFieldHipAccum, hipAccum); err != nil {
			return err
		}
	}
	putIntStream(mem[preInts*4:], cwStream)
	return nil
}

func putPinnedSlidingMerged(mem []byte, lgK, fiCol, numCoupons, numSv, csvLength, cwLength int, seedHash uint16, csvStream, cwStream []int) error {
	return putPinnedSliding(mem, CpcFormatPinnedSlidingMerged, lgK, fiCol, numCoupons, numSv, csvLength, cwLength, 0, 0, seedHash, csvStream, cwStream)
}

func putPinnedSlidingHip(mem []byte, lgK, fiCol, numCoupons, numSv int, kxp, hipAccum float64, csvLength, cwLength int, seedHash uint16, csvStream, cwStream []int) error {
	return putPinnedSliding(mem, CpcFormatPinnedSlidingHip, lgK, fiCol, numCoupons, numSv, csvLength, cwLength, kxp, hipAccum, seedHash, csvStream, cwStream)
}

// putPinnedSliding mirrors putPinnedSlidingNoSv's write-preamble-first order
// and stores the window stream ahead of the surprising-value stream, the
// same order the reference C++ serializer uses.
func putPinnedSliding(mem []byte, format CpcFormat, lgK, fiCol, numCoupons, numSv, csvLength, cwLength int, kxp, hipAccum float64, seedHash uint16, csvStream, cwStream []int) error {
	if err := checkLgK(lgK); err != nil {
		return err
	}
	preInts := getDefinedPreInts(format)
	putLowPreamble(mem, format, preInts, lgK, fiCol, seedHash)
	if cwLength <= 0 {
		return fmt.Errorf("pinned/sliding sketch must carry a non-empty window stream")
	}
	if err := checkCapacity(len(mem), (preInts+csvLength+cwLength)*4); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldNumCoupons, numCoupons); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldNumSv, numSv); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldSvLength, csvLength); err != nil {
		return err
	}
	if err := putHiFieldInt(mem, format, hiFieldWLength, cwLength); err != nil {
		return err
	}
	if format == CpcFormatPinnedSlidingHip {
		if err := putHiFieldFloat(mem, format, hiFieldKxp, kxp); err != nil {
			return err
		}
		if err := putHiFieldFloat(mem, format, hiFieldHipAccum, hipAccum); err != nil {
			return err
		}
	}
	offset := preInts * 4
	putIntStream(mem[offset:], cwStream)
	offset += cwLength * 4
	putIntStream(mem[offset:], csvStream)
	return nil
}

// CpcSketchToString renders a serialized CPC image's preamble as a
// human-readable summary, mirroring the sketch's own textual dump.
func CpcSketchToString(mem []byte, verbose bool) (string, error) {
	if err := checkLoPreamble(mem); err != nil {
		return "", err
	}
	format := getFormat(mem)
	var b strings.Builder
	fmt.Fprintf(&b, "### CPC sketch summary\n")
	fmt.Fprintf(&b, "   format         : %d\n", format)
	fmt.Fprintf(&b, "   lgK            : %d\n", getLgK(mem))
	fmt.Fprintf(&b, "   num coupons    : %d\n", getNumCoupons(mem))
	if hasHip(mem) {
		fmt.Fprintf(&b, "   HIP estimate   : %f\n", getHipAccum(mem))
		fmt.Fprintf(&b, "   kxp            : %f\n", getKxP(mem))
	}
	fmt.Fprintf(&b, "   fiCol          : %d\n", getFiCol(mem))
	if verbose {
		fmt.Fprintf(&b, "   sv length ints : %d\n", getSvLengthInts(mem))
		fmt.Fprintf(&b, "   w length ints  : %d\n", getWLengthInts(mem))
		fmt.Fprintf(&b, "   num sv         : %d\n", getNumSV(mem))
	}
	fmt.Fprintf(&b, "### End sketch summary\n")
	return b.String(), nil
}
