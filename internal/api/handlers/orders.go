package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"vendor-match-service/internal/api/dto"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
	"vendor-match-service/internal/services"
)

type OrderHandler struct {
	Service *services.RequestService
}

// Create accepts exactly one vendor for a request and creates the order.
// A losing selection attempt gets 409 with the already-accepted vendor.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest

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

	if req.RequestID == "" || req.VendorID == "" {
		writeError(w, r, http.StatusBadRequest, "request_id and vendor_id are required")
		return
	}
	if len(req.AcceptedOffers) == 0 {
		writeError(w, r, http.StatusBadRequest, "accepted_offers must be non-empty")
		return
	}

	lines := make([]domain.OrderLine, 0, len(req.AcceptedOffers))
	for _, o := range req.AcceptedOffers {
		lines = append(lines, domain.OrderLine{
			RequestItemID: o.RequestItemID,
			OfferType:     domain.OfferType(o.OfferType),
			FinalPrice:    o.FinalPrice,
			FinalQuantity: o.FinalQtyValue,
			FinalUnit:     domain.Unit(o.FinalQtyUnit),
		})
	}

	var delivery *domain.Location
	if req.DeliveryAddress != nil {
		delivery = &domain.Location{
			Lat:     req.DeliveryAddress.Lat,
			Lng:     req.DeliveryAddress.Lng,
			Address: req.DeliveryAddress.Address,
		}
	}

	order, err := h.Service.AcceptSelection(r.Context(), services.AcceptParams{
		RequestID:       req.RequestID,
		VendorID:        req.VendorID,
		Lines:           lines,
		TotalAmount:     req.TotalAmount,
		Currency:        req.Currency,
		DeliveryAddress: delivery,
		Notes:           req.Notes,
	})

	var conflict *services.SelectionConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, r, http.StatusConflict, dto.ConflictResponse{
			Error:            conflict.Reason,
			RequestID:        conflict.RequestID,
			AcceptedVendorID: conflict.AcceptedVendorID,
		})
		return
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "request not found")
		return
	case err != nil:
		log.Printf("create order failed: request_id=%s vendor_id=%s err=%v", req.RequestID, req.VendorID, err)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.OrderResponse{
		OrderID:     order.ID,
		RequestID:   order.RequestID,
		VendorID:    order.VendorID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		CreatedAt:   order.CreatedAt,
	})
}
