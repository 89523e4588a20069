// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/utils"
)

// peerInfo handles GET /api/peer/info.
//
// It answers with the announcement of this node: its id, the address of its
// gRPC health service and the discovery keys of the collections it serves.
func (h *Handler) peerInfo(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	info := h.services.PeerService.Info(r.Context())
	if _, err := utils.WriteJSON(w, info, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.peerInfo").Msg("error writing peer info")
	}
}

// snapshot handles GET /api/collections/{discoveryKey}/snapshot.
//
// The response carries the signed snapshot of the collection. Peers verify
// the signature with the collection key, which never travels over this API.
// Responds with 404 when the collection is not served by this node.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	discoveryKey := chi.URLParam(r, "discoveryKey")

	signed, err := h.services.PeerService.Snapshot(r.Context(), discoveryKey)
	if err != nil {
		log.Err(err).Str("func", "*Handler.snapshot").Str("discovery_key", discoveryKey).Msg("error getting snapshot")
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	if _, err = utils.WriteJSON(w, signed, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.snapshot").Msg("error writing snapshot")
	}
}
