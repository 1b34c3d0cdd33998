// SPDX-License-Identifier: BSD-3-Clause

package selfupdate

import "errors"

var (
	// ErrDownloadFailed indicates curl exited non-zero fetching the new
	// binary.
	ErrDownloadFailed = errors.New("downloading update artifact failed")
	// ErrArtifactTooSmall indicates the downloaded artifact is under the
	// 1 MB plausibility floor.
	ErrArtifactTooSmall = errors.New("update artifact implausibly small")
	// ErrArtifactFailedVersionCheck indicates `<new> --version` exited
	// non-zero.
	ErrArtifactFailedVersionCheck = errors.New("update artifact failed version check")
	// ErrSwapFailed indicates the atomic rename sequence could not
	// complete and was rolled back.
	ErrSwapFailed = errors.New("swapping running binary failed")
	// ErrMarkerIO indicates the update-pending marker could not be read
	// or written.
	ErrMarkerIO = errors.New("update marker I/O failed")
	// ErrRollbackFailed indicates a suspected-failure boot could not
	// restore the previous binary.
	ErrRollbackFailed = errors.New("rolling back to previous binary failed")
)
