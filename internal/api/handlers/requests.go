package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"vendor-match-service/internal/api/dto"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
	"vendor-match-service/internal/services"
)

type RequestHandler struct {
	Service *services.RequestService
}

// Create validates the customer's shopping request, resolves locations,
// and kicks off the vendor solicitation round.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequestRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, r, http.StatusBadRequest, "items must be non-empty")
		return
	}

	items := make([]domain.RequestItem, 0, len(req.Items))
	for i, it := range req.Items {
		unit, err := domain.ParseUnit(it.RequestedQtyUnit)
		if err != nil {
			writeError(w, r, http.StatusBadRequest,
				"items["+strconv.Itoa(i)+"]: unknown unit "+it.RequestedQtyUnit)
			return
		}
		if it.RequestedQtyValue <= 0 {
			writeError(w, r, http.StatusBadRequest, "items["+strconv.Itoa(i)+"]: requested_qty_value must be positive")
			return
		}

		packs := make([]domain.SuggestedPack, 0, len(it.SuggestedPacks))
		for _, p := range it.SuggestedPacks {
			pu, err := domain.ParseUnit(p.PackUnit)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, "items["+strconv.Itoa(i)+"]: unknown pack unit "+p.PackUnit)
				return
			}
			packs = append(packs, domain.SuggestedPack{Value: p.PackValue, Unit: pu})
		}

		items = append(items, domain.RequestItem{
			ProductName:       strings.TrimSpace(it.ProductName),
			NormalizedHint:    it.NormalizedHint,
			RequestedQuantity: it.RequestedQtyValue,
			RequestedUnit:     unit,
			FractionalAllowed: it.AllowFractionalByUser,
			Notes:             it.Notes,
			SuggestedPacks:    packs,
		})
	}

	origin, err := toLocationInput(req.Origin)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "origin: "+err.Error())
		return
	}
	destination, err := toLocationInput(req.Destination)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "destination: "+err.Error())
		return
	}

	created, candidates, err := h.Service.CreateRequest(r.Context(), services.CreateRequestParams{
		CustomerID:  req.UserID,
		Origin:      origin,
		Destination: destination,
		MaxDetourKm: req.MaxDetourKm,
		Items:       items,
		Deadline:    req.DeadlineUTC,
	})
	if err != nil {
		log.Printf("create request failed: err=%v", err)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := toRequestView(created)
	n := len(candidates)
	view.CandidateCount = &n
	writeJSON(w, r, http.StatusCreated, view)
}

// Get returns the request with its current lifecycle status.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, err := h.Service.GetRequest(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		log.Printf("get request failed: request_id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toRequestView(req))
}

// Cancel aborts a non-terminal request.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.Service.CancelRequest(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "request not found")
		return
	}

	var conflict *services.SelectionConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, r, http.StatusConflict, dto.ConflictResponse{
			Error:            conflict.Reason,
			RequestID:        conflict.RequestID,
			AcceptedVendorID: conflict.AcceptedVendorID,
		})
		return
	}
	if err != nil {
		log.Printf("cancel request failed: request_id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"request_id": id, "status": string(domain.StatusCancelled)})
}
