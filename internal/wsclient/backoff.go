// SPDX-License-Identifier: BSD-3-Clause

package wsclient

import "time"

// backoffMultipliers is the bounded reconnect sequence B, 1.4B, 2B, 3B,
// 3B, ... — the retry counter saturates at index 3 so the wait never
// grows past 3B. Longer outages increase thermal risk but also amplify
// the cost of connection storms against a flapping hub.
var backoffMultipliers = []float64{1, 1.4, 2, 3}

// backoffDuration returns the wait before the (attempt+1)-th reconnect,
// attempt being the number of consecutive failures so far (0-indexed).
func backoffDuration(attempt int, base time.Duration) time.Duration {
	idx := attempt
	if idx >= len(backoffMultipliers) {
		idx = len(backoffMultipliers) - 1
	}
	return time.Duration(float64(base) * backoffMultipliers[idx])
}
