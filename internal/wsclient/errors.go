// SPDX-License-Identifier: BSD-3-Clause

package wsclient

import "errors"

var (
	// ErrDialFailed indicates the TCP+WS handshake did not complete
	// within the configured connect timeout.
	ErrDialFailed = errors.New("hub handshake failed")
	// ErrMaxReconnectsExceeded indicates the configured bounded retry
	// count was exhausted.
	ErrMaxReconnectsExceeded = errors.New("max reconnect attempts exceeded")
	// ErrActivityTimeout indicates 30s elapsed with no inbound
	// activity.
	ErrActivityTimeout = errors.New("no inbound activity within timeout")
	// ErrServerClosed indicates the hub closed the connection.
	ErrServerClosed = errors.New("server closed connection")
	// ErrReadFrame indicates a non-timeout read failure.
	ErrReadFrame = errors.New("reading websocket frame failed")
	// ErrWriteFrame indicates a frame write failed.
	ErrWriteFrame = errors.New("writing websocket frame failed")
	// ErrEncodeFrame indicates a frame failed to marshal to JSON.
	ErrEncodeFrame = errors.New("encoding websocket frame failed")
)
