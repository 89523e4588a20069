package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTransactionFailed = errors.New("transaction failed")
	ErrQuorumTimeout     = errors.New("quorum timeout")

	ErrCollectionNotOpened = errors.New("collection is not opened")
	ErrCollectionClosed    = errors.New("collection is closed")
	ErrCollectionReadOnly  = errors.New("collection is read-only")
	ErrCollectionWritable  = errors.New("collection is owned by this node")

	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
	ErrSnapshotMismatch    = errors.New("snapshot belongs to another collection")
	ErrCollectionNotServed = errors.New("collection is not served")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// QuorumTimeoutError reports that the quorum gate gave up before enough peers
// connected. It matches [ErrQuorumTimeout] with [errors.Is].
type QuorumTimeoutError struct {
	MinPeers  int
	PeerCount int
	Elapsed   time.Duration
}

func (e *QuorumTimeoutError) Error() string {
	return fmt.Sprintf("quorum timeout: %d of %d peers connected after %s",
		e.PeerCount, e.MinPeers, e.Elapsed.Round(time.Millisecond))
}

func (e *QuorumTimeoutError) Is(target error) bool {
	return target == ErrQuorumTimeout
}
