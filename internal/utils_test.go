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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvPow2(t *testing.T) {
	v, err := InvPow2(0)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), v)

	v, err = InvPow2(1)
	assert.NoError(t, err)
	assert.Equal(t, float64(0.5), v)

	_, err = InvPow2(-1)
	assert.Error(t, err)

	_, err = InvPow2(1024)
	assert.Error(t, err)
}

func TestGetPutShortLE(t *testing.T) {
	buf := make([]byte, 4)
	PutShortLE(buf, 1, 0xABCD)
	assert.Equal(t, 0xABCD, GetShortLE(buf, 1))
}

func TestCeilPowerOf2(t *testing.T) {
	testCases := []struct {
		n        int
		expected int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1000, 1024},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, CeilPowerOf2(tc.n))
	}
}

func TestExactLog2(t *testing.T) {
	v, err := ExactLog2(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = ExactLog2(32)
	assert.NoError(t, err)
	assert.Equal(t, 5, v)

	_, err = ExactLog2(3)
	assert.Error(t, err)
}

func TestIsPowerOf2(t *testing.T) {
	assert.True(t, IsPowerOf2(1))
	assert.True(t, IsPowerOf2(2))
	assert.True(t, IsPowerOf2(1024))
	assert.False(t, IsPowerOf2(0))
	assert.False(t, IsPowerOf2(-2))
	assert.False(t, IsPowerOf2(3))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, BoolToInt(true))
	assert.Equal(t, 0, BoolToInt(false))
}
