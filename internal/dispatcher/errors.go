// SPDX-License-Identifier: BSD-3-Clause

package dispatcher

import "errors"

var (
	// ErrUnknownCommand is returned (as a commandResponse error string,
	// never as a Go error to the caller) for an unrecognized command
	// type.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMalformedPayload indicates a command's payload did not decode
	// into the shape the command expects.
	ErrMalformedPayload = errors.New("malformed command payload")
)
