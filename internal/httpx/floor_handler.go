package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-resto-floor.git/internal/catalog"
	"github.com/ariefcatur/go-resto-floor.git/internal/floor"
	"github.com/ariefcatur/go-resto-floor.git/internal/lifecycle"
	"github.com/ariefcatur/go-resto-floor.git/internal/orders"
	"github.com/ariefcatur/go-resto-floor.git/internal/remote"
	"github.com/ariefcatur/go-resto-floor.git/internal/state"
	"github.com/ariefcatur/go-resto-floor.git/internal/syncx"
)

// FloorHandler exposes the engine to the front-of-house UI. Tables are
// addressed by their staff-facing number here; everything below this layer
// works with canonical backend ids.
type FloorHandler struct {
	Store  *state.Store
	Sync   *syncx.Coordinator
	Orders *lifecycle.Manager
	Now    func() time.Time // test hook, defaults to time.Now
}

func (h *FloorHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/ingredients/low", h.lowStock)
	r.Get("/tables", h.tableGrid)
	r.Get("/tables/{number}/order", h.getOrder)
	r.Post("/tables/{number}/order/items", h.setItemCount)
	r.Post("/tables/{number}/order/commit", h.commitOrder)
	r.Post("/tables/{number}/order/cancel", h.cancelOrder)
	r.Post("/tables/{number}/order/pay", h.payOrder)
	r.Post("/reservations", h.createReservation)
	r.Delete("/reservations/{id}", h.deleteReservation)
	r.Post("/refresh", h.refresh)
	r.Post("/refresh/tables", h.refreshTables)
}

func (h *FloorHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var insufficient *orders.InsufficientStockError
	var conflict *remote.ConflictError
	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   insufficient.Error(),
			"details": insufficient.Details,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": conflict.Error()})
	case errors.Is(err, lifecycle.ErrNoOrder), errors.Is(err, remote.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, lifecycle.ErrUnknownProduct),
		errors.Is(err, lifecycle.ErrInactiveProduct),
		errors.Is(err, lifecycle.ErrNotPayable),
		errors.Is(err, lifecycle.ErrClosedOrder),
		errors.Is(err, orders.ErrEmptyOrder):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		// unexpected remote failure: generic error state, retry affordance
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "retry": "true"})
	}
}

func (h *FloorHandler) tableID(w http.ResponseWriter, r *http.Request) (string, bool) {
	num, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return "", false
	}
	id, ok := h.Store.Snapshot().TableIDByNum[num]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown table"})
		return "", false
	}
	return id, true
}

// ---- reads ----

func (h *FloorHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	out := make([]productView, 0, len(snap.Products))
	for _, p := range snap.Products {
		if !p.IsActive {
			continue
		}
		out = append(out, productView{
			ID: p.ID, Name: p.Name, PriceCents: p.PriceCents,
			Category: p.Category, Stock: p.Stock,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (h *FloorHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	out := []catalog.Ingredient{}
	for _, ing := range snap.Ingredients {
		if ing.LowStock() {
			out = append(out, ing)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (h *FloorHandler) tableGrid(w http.ResponseWriter, r *http.Request) {
	snap := h.Store.Snapshot()
	now := h.now()
	out := make([]tableView, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		status, _ := floor.Resolve(t, snap.Reservations, now)
		tv := tableView{
			ID:       t.ID,
			Number:   t.Number,
			Capacity: t.Capacity,
			SalonID:  t.SalonID,
			Status:   string(status),
		}
		if s, ok := snap.Salons[t.SalonID]; ok {
			tv.Salon = s.Name
		}
		if o, ok := snap.Orders[t.ID]; ok {
			tv.OrderTotal = o.TotalCents()
		}
		out = append(out, tv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	resp := gridResponse{Tables: out, TakenAt: snap.TakenAt, Degraded: snap.Degraded}
	if err := h.Store.LastError(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FloorHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, orderView(h.Orders.OrderFor(id)))
}

// ---- order lifecycle ----

func (h *FloorHandler) setItemCount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Delta     int    `json:"delta"`
		Note      string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	o, err := h.Orders.SetItemCount(id, req.ProductID, req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Note != "" {
		o, _ = h.Orders.SetNote(id, req.ProductID, req.Note)
	}
	writeJSON(w, http.StatusOK, orderView(o))
}

func (h *FloorHandler) commitOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	o, err := h.Orders.Commit(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(o))
}

func (h *FloorHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Orders.Cancel(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *FloorHandler) payOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tableID(w, r)
	if !ok {
		return
	}
	var req struct {
		AmountCents int `json:"amount_cents"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	o, err := h.Orders.Pay(ctx, id, req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderView(o))
}

// ---- reservations ----

func (h *FloorHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID     string    `json:"table_id"`
		TableNumber int       `json:"table_number"`
		PartySize   int       `json:"party_size"`
		At          time.Time `json:"date_time"`
		Special     bool      `json:"special"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	snap := h.Store.Snapshot()
	tableID := req.TableID
	if tableID == "" {
		id, ok := snap.TableIDByNum[req.TableNumber]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown table"})
			return
		}
		tableID = id
	}
	if req.At.Before(h.now()) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reservation time is in the past"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := h.Orders.CreateReservation(ctx, floor.Reservation{
		TableID:   tableID,
		PartySize: req.PartySize,
		At:        req.At,
		Special:   req.Special,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *FloorHandler) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var tableID string
	for _, res := range h.Store.Snapshot().Reservations {
		if res.ID == id {
			tableID = res.TableID
			break
		}
	}
	if tableID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown reservation"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Orders.CancelReservation(ctx, id, tableID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ---- refresh ----

func (h *FloorHandler) refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	snap, err := h.Sync.Refresh(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seq": snap.Seq, "taken_at": snap.TakenAt, "degraded": snap.Degraded})
}

func (h *FloorHandler) refreshTables(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	snap, err := h.Sync.RefreshTablesAndSalons(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seq": snap.Seq, "tables": len(snap.Tables)})
}
