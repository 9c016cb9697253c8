package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"healthreg/internal/connectivity"
	"healthreg/internal/patient/models"
	"healthreg/internal/patient/service"
	dErrors "healthreg/pkg/domain-errors"
	"healthreg/pkg/platform/httputil"
	"healthreg/pkg/platform/middleware/admin"
	"healthreg/pkg/requestcontext"
)

const maxBodyBytes = 64 << 10

type Writer interface {
	Register(ctx context.Context, reg models.Registration) (models.WriteResult, error)
}

type Reader interface {
	List(ctx context.Context) (models.ListResult, error)
}

type Reconciler interface {
	GetPending(ctx context.Context) ([]models.PatientRecord, error)
	Confirm(ctx context.Context, id string) error
	ConfirmAll(ctx context.Context) (int, error)
}

// Connectivity is the settings-side view of the online signal.
type Connectivity interface {
	Status() connectivity.Status
	SetOnline(online bool)
	Toggle() bool
}

// Handler serves patient registration, listing, sync bookkeeping and the
// manual connectivity switch.
type Handler struct {
	writer        Writer
	reader        Reader
	reconciler    Reconciler
	conn          Connectivity
	operatorToken string
	logger        *zap.Logger
}

func New(writer Writer, reader Reader, reconciler Reconciler, conn Connectivity, operatorToken string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		writer:        writer,
		reader:        reader,
		reconciler:    reconciler,
		conn:          conn,
		operatorToken: operatorToken,
		logger:        logger,
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/patients", h.handleRegisterPatient)
	r.Get("/patients", h.handleListPatients)

	r.Get("/sync/pending", h.handlePending)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireOperatorToken(h.operatorToken, h.logger))
		r.Post("/sync/pending/{id}/confirm", h.handleConfirm)
		r.Post("/sync/prune", h.handlePrune)
	})

	r.Get("/connectivity", h.handleGetConnectivity)
	r.Put("/connectivity", h.handleSetConnectivity)
	r.Post("/connectivity/toggle", h.handleToggleConnectivity)
}

func (h *Handler) handleRegisterPatient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req RegisterPatientRequest
	if err := decode(w, r, &req); err != nil {
		h.logger.Warn("invalid register request", zap.String("request_id", requestID), zap.Error(err))
		httputil.WriteError(w, err)
		return
	}

	result, err := h.writer.Register(ctx, req.ToRegistration())
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.Error("failed to register patient", zap.String("request_id", requestID), zap.Error(err))
		}
		httputil.WriteError(w, err)
		return
	}

	resp := RegisterPatientResponse{
		ID:      result.ID,
		Outcome: result.Outcome,
		Message: result.Message(),
	}
	status := http.StatusCreated
	if result.Outcome == models.OutcomeOffline {
		status = http.StatusAccepted
		if result.RemoteErr != nil {
			resp.RemoteError = string(dErrors.CodeRemoteUnavailable)
		}
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) handleListPatients(w http.ResponseWriter, r *http.Request) {
	result, err := h.reader.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list patients", zap.String("request_id", requestcontext.RequestID(r.Context())), zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	patients := service.Filter(result.Patients, r.URL.Query().Get("q"))
	httputil.WriteJSON(w, http.StatusOK, ListPatientsResponse{
		Patients: patients,
		Source:   result.Source,
		Degraded: result.Degraded,
		Count:    len(patients),
	})
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	records, err := h.reconciler.GetPending(r.Context())
	if err != nil {
		h.logger.Error("failed to list pending records", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PendingResponse{Count: len(records), Records: records})
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciler.Confirm(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePrune(w http.ResponseWriter, r *http.Request) {
	removed, err := h.reconciler.ConfirmAll(r.Context())
	if err != nil {
		h.logger.Error("failed to prune synced records", zap.Error(err))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PruneResponse{Removed: removed})
}

func (h *Handler) handleGetConnectivity(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.conn.Status())
}

func (h *Handler) handleSetConnectivity(w http.ResponseWriter, r *http.Request) {
	var req SetConnectivityRequest
	if err := decode(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.conn.SetOnline(*req.Online)
	httputil.WriteJSON(w, http.StatusOK, h.conn.Status())
}

func (h *Handler) handleToggleConnectivity(w http.ResponseWriter, _ *http.Request) {
	h.conn.Toggle()
	httputil.WriteJSON(w, http.StatusOK, h.conn.Status())
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
