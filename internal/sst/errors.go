// SPDX-License-Identifier: BSD-3-Clause

package sst

import "errors"

// ErrNotInSet indicates a tunable's value is not a member of its closed
// set.
var ErrNotInSet = errors.New("value not in permitted set")
