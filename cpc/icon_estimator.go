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

import "math"

// iconEstimate is the "inverse coupon collector" point estimate used while
// a sketch is in the merged state (was_merged == true, no HIP accumulator
// available). It is continuous and monotonically increasing in c.
func iconEstimate(lgK int, c uint64) float64 {
	if c == 0 {
		return 0.0
	}
	if c < 2 {
		return 1.0
	}
	k := 1 << lgK
	doubleK := float64(k)
	doubleC := float64(c)
	// Differing thresholds ensure that the approximated estimator is monotonically increasing.
	var thresholdFactor float64
	if lgK < 14 {
		thresholdFactor = 5.7
	} else {
		thresholdFactor = 5.6
	}
	if doubleC > (thresholdFactor * doubleK) {
		return iconExponentialApproximation(doubleK, doubleC)
	}
	// Low-C regime: collisions between coupons are rare here, so c itself is
	// already close to the true count. Scale the high-C exponential curve
	// down linearly in ratio so the two branches meet exactly at the
	// threshold, and never return less than c itself, giving a continuous,
	// monotonically increasing estimator without a fitted correction table.
	ratio := doubleC / doubleK
	return math.Max(doubleC, iconExponentialApproximation(doubleK, doubleC)*(ratio/thresholdFactor))
}

func iconExponentialApproximation(k, c float64) float64 {
	return 0.7940236163830469 * k * math.Pow(2.0, c/k)
}
