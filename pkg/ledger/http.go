package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/vortexartec/tola-ledger/pkg/app/errors"
	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// HTTP exposes read access to the transaction log
type HTTP struct {
	store  Store
	logger *zap.Logger
}

// RegisterRoutes registers transaction log endpoints on the given chi router
func RegisterRoutes(r chi.Router, store Store, logger *zap.Logger) {
	h := &HTTP{
		store:  store,
		logger: logger,
	}

	r.Get("/transactions", apphttp.HandleError(h.list))
	r.Get("/transactions/{txHash}", apphttp.HandleError(h.get))
}

type listResponse struct {
	Transactions []*tola.Transaction `json:"transactions"`
	Total        int                 `json:"total"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	wallet := query.Get("wallet")
	if wallet == "" {
		return apperrors.BadRequestError(nil, "wallet query parameter is required")
	}

	direction := tola.DirectionAll
	if raw := query.Get("direction"); raw != "" {
		direction = tola.Direction(raw)
		if !direction.Valid() {
			return apperrors.BadRequestError(nil, "direction must be incoming, outgoing or all")
		}
	}

	limit := defaultPageSize
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		limit = min(parsed, maxPageSize)
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apperrors.BadRequestError(err, "offset must be a non-negative integer")
		}
		offset = parsed
	}

	opts := []QueryOption{
		WithDirection(direction),
		WithLimit(limit),
		WithOffset(offset),
	}
	countOpts := []QueryOption{WithDirection(direction)}

	if raw := query.Get("status"); raw != "" {
		status := tola.Status(raw)
		if !status.Valid() {
			return apperrors.BadRequestError(nil, "status must be pending, confirmed or failed")
		}
		opts = append(opts, WithStatus(status))
		countOpts = append(countOpts, WithStatus(status))
	}

	transactions, err := h.store.ListByWallet(r.Context(), wallet, opts...)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	total, err := h.store.CountByWallet(r.Context(), wallet, countOpts...)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	return apphttp.WriteOK(w, &listResponse{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	})
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	txHash := chi.URLParam(r, "txHash")

	tx, err := h.store.GetByTxHash(r.Context(), txHash)
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return apperrors.ResourceNotFoundError(err, "transaction not found")
		}
		return apperrors.GeneralError(err)
	}

	return apphttp.WriteOK(w, tx)
}
