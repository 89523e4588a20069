// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/key-collection/internal/service"
	"github.com/MKhiriev/key-collection/internal/store"
	"github.com/MKhiriev/key-collection/models"
)

// ── peerInfo ──

func TestPeerInfo_ReturnsAnnouncement(t *testing.T) {
	peers := &stubPeerService{info: models.PeerInfo{
		NodeID:      "node-1",
		GRPCAddress: "127.0.0.1:9090",
		Topics:      []string{"a", "b"},
	}}
	router := newTestRouterHandler(t, peers).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/peer/info", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var got models.PeerInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, peers.info, got)
}

// ── snapshot ──

func TestSnapshot_ReturnsSignedSnapshot(t *testing.T) {
	want := models.SignedSnapshot{Token: "header.payload.sig", Version: 7}
	peers := &stubPeerService{snapshots: map[string]models.SignedSnapshot{"disc-key": want}}
	router := newTestRouterHandler(t, peers).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/collections/disc-key/snapshot", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "disc-key", peers.requested)

	var got models.SignedSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, want, got)
}

func TestSnapshot_GzipWhenAccepted(t *testing.T) {
	want := models.SignedSnapshot{Token: "tok", Version: 3}
	peers := &stubPeerService{snapshots: map[string]models.SignedSnapshot{"d": want}}
	router := newTestRouterHandler(t, peers).Init()

	req := httptest.NewRequest(http.MethodGet, "/api/collections/d/snapshot", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var got models.SignedSnapshot
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, want, got)
}

func TestSnapshot_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not served", service.ErrCollectionNotServed, http.StatusNotFound},
		{"no snapshot yet", service.ErrSnapshotUnavailable, http.StatusNotFound},
		{"closed", service.ErrCollectionClosed, http.StatusServiceUnavailable},
		{"not opened", service.ErrCollectionNotOpened, http.StatusServiceUnavailable},
		{"wrapped store error", fmt.Errorf("reading: %w", store.ErrExecutingQuery), http.StatusInternalServerError},
		{"unknown error", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouterHandler(t, &stubPeerService{err: tt.err}).Init()

			req := httptest.NewRequest(http.MethodGet, "/api/collections/x/snapshot", nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestStatusFromError_CollectionNotFound(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFromError(fmt.Errorf("find: %w", store.ErrCollectionNotFound)))
}
