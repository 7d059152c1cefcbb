package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/wayfarer/itinerary-orchestrator/internal/domain"
	"github.com/wayfarer/itinerary-orchestrator/internal/queue"
	"github.com/wayfarer/itinerary-orchestrator/internal/reqctx"
)

// QueueHandler exposes the candidate queue session.
type QueueHandler struct {
	engine *queue.Engine
	logger *zap.Logger
}

func NewQueueHandler(engine *queue.Engine, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{engine: engine, logger: logger}
}

// Start handles POST /api/v1/queue/start
//
// @Summary     Start a queue session for an address
// @Tags        queue
// @Accept      json
// @Produce     json
// @Param       body  body      domain.StartQueueRequest  true  "Session address"
// @Success     200   {object}  domain.QueueSnapshot
// @Failure     409   {object}  map[string]string
// @Failure     502   {object}  map[string]string
// @Router      /api/v1/queue/start [post]
func (h *QueueHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req domain.StartQueueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		mapError(w, r, err)
		return
	}

	snap, err := h.engine.Start(r.Context(), req.Address)
	if err != nil {
		h.warn(r, "start queue failed", err)
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// End handles POST /api/v1/queue/end
func (h *QueueHandler) End(w http.ResponseWriter, r *http.Request) {
	h.engine.End(r.Context())
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// Next handles GET /api/v1/queue/next
//
// @Summary  Peek at the head of the queue
// @Tags     queue
// @Produce  json
// @Success  200  {object}  domain.CandidateItem
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/queue/next [get]
func (h *QueueHandler) Next(w http.ResponseWriter, r *http.Request) {
	item, err := h.engine.Next(r.Context())
	if err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Commit handles POST /api/v1/queue/commit
//
// @Summary     Add a queued business to an itinerary list
// @Tags        queue
// @Accept      json
// @Produce     json
// @Param       body  body      domain.CommitRequest  true  "Business, list and day"
// @Success     201   {object}  domain.ItineraryEntry
// @Failure     404   {object}  map[string]string
// @Failure     422   {object}  map[string]string
// @Failure     502   {object}  map[string]string
// @Router      /api/v1/queue/commit [post]
func (h *QueueHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req domain.CommitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.commit(w, r, req)
}

// Skip handles POST /api/v1/queue/skip
//
// @Summary     Discard a queued business
// @Tags        queue
// @Accept      json
// @Produce     json
// @Param       body  body      domain.SkipRequest  true  "Business and address"
// @Success     200   {object}  map[string]any
// @Failure     404   {object}  map[string]string
// @Failure     409   {object}  map[string]string
// @Router      /api/v1/queue/skip [post]
func (h *QueueHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req domain.SkipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.skip(w, r, req)
}

// Decide handles POST /api/v1/queue/decide, routing to commit or skip by action.
func (h *QueueHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req domain.DecideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		mapError(w, r, err)
		return
	}

	if req.Action == domain.ActionAdd {
		h.commit(w, r, domain.CommitRequest{BusinessID: req.BusinessID, ListID: req.ListID, Day: req.Day})
		return
	}
	h.skip(w, r, domain.SkipRequest{BusinessID: req.BusinessID, Address: req.Address})
}

// Snapshot handles GET /api/v1/queue
func (h *QueueHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Snapshot())
}

func (h *QueueHandler) commit(w http.ResponseWriter, r *http.Request, req domain.CommitRequest) {
	if err := req.Validate(); err != nil {
		mapError(w, r, err)
		return
	}
	day, _ := domain.ParseDay(req.Day)

	entry, err := h.engine.Commit(r.Context(), req.BusinessID, req.ListID, day)
	if err != nil {
		h.warn(r, "commit failed", err, zap.Int64("business_id", req.BusinessID))
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (h *QueueHandler) skip(w http.ResponseWriter, r *http.Request, req domain.SkipRequest) {
	if err := req.Validate(); err != nil {
		mapError(w, r, err)
		return
	}
	if err := h.engine.Skip(r.Context(), req.BusinessID, req.Address); err != nil {
		mapError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "skipped",
		"business_id": req.BusinessID,
	})
}

func (h *QueueHandler) warn(r *http.Request, msg string, err error, fields ...zap.Field) {
	reqctx.Logger(r.Context(), h.logger).Warn(msg, append(fields, zap.Error(err))...)
}
