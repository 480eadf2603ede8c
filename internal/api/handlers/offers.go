package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"vendor-match-service/internal/api/dto"
	"vendor-match-service/internal/ports"
	"vendor-match-service/internal/services"
)

type OfferHandler struct {
	Service *services.RequestService
}

// List serves the ranked aggregated quotes for a request, derived fresh
// from the latest stored vendor offers.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, offers, err := h.Service.RankedOffers(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		log.Printf("ranked offers failed: request_id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RankedOffersResponse{
		RequestID: req.ID,
		Status:    string(req.Status),
		Offers:    toAggregatedOffers(offers),
	})
}

// SubmitResponse ingests a vendor's offer arriving through the API. The
// response is 202 regardless of whether the offer made it into ranking;
// late submissions are recorded for audit only.
func (h *OfferHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload dto.VendorResponseRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if payload.RequestID == "" {
		payload.RequestID = id
	}
	if payload.RequestID != id {
		writeError(w, r, http.StatusBadRequest, "request_id does not match the URL")
		return
	}
	if payload.SubmittedAt.IsZero() {
		payload.SubmittedAt = time.Now()
	}

	offer, err := toVendorOffer(payload)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	accepted, err := h.Service.SubmitVendorOffer(r.Context(), offer)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		log.Printf("submit vendor offer failed: request_id=%s vendor_id=%s err=%v", id, offer.VendorID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusAccepted, dto.VendorResponseAck{
		RequestID: offer.RequestID,
		VendorID:  offer.VendorID,
		Accepted:  accepted,
	})
}
