// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

var (
	// ErrRead indicates the config file exists but could not be read.
	ErrRead = errors.New("config read failure")
	// ErrParse indicates the config file's JSON could not be decoded.
	ErrParse = errors.New("config parse failure")
	// ErrSave indicates the config could not be written back to disk.
	ErrSave = errors.New("config save failure")
)
