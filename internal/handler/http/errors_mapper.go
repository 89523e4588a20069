package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrCollectionNotServed: http.StatusNotFound,
	service.ErrSnapshotUnavailable: http.StatusNotFound,
	service.ErrCollectionNotOpened: http.StatusServiceUnavailable,
	service.ErrCollectionClosed:    http.StatusServiceUnavailable,

	store.ErrCollectionNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusInternalServerError,
	store.ErrBeginningTransaction: http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
	store.ErrExecutingStatement:   http.StatusInternalServerError,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
