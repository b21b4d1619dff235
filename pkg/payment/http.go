package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/vortexartec/tola-ledger/pkg/app/errors"
	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
	"github.com/vortexartec/tola-ledger/pkg/auth"
	"github.com/vortexartec/tola-ledger/pkg/tola"
)

// HTTP wraps the Processor to provide HTTP endpoints
type HTTP struct {
	processor *Processor
	store     Store
	logger    *zap.Logger
}

// RegisterRoutes registers the payment endpoints on the given router.
// Both require an authenticated wallet session.
func RegisterRoutes(r chi.Router, processor *Processor, store Store, logger *zap.Logger) {
	h := &HTTP{processor: processor, store: store, logger: logger}

	r.Post("/payments", apphttp.HandleError(h.processOrder))
	r.Get("/payments/{intentID}", apphttp.HandleError(h.getIntent))
}

type orderItemRequest struct {
	ItemID       int64  `json:"item_id"`
	ArtistWallet string `json:"artist_wallet"`
	Price        string `json:"price"`
	Quantity     int64  `json:"quantity"`
}

type orderRequest struct {
	OrderID int64              `json:"order_id"`
	Items   []orderItemRequest `json:"items"`
}

type intentResponse struct {
	ID          string         `json:"id"`
	OrderID     int64          `json:"order_id"`
	BuyerWallet string         `json:"buyer_wallet"`
	Total       string         `json:"total"`
	Status      IntentStatus   `json:"status"`
	Steps       []stepResponse `json:"steps"`
}

type stepResponse struct {
	ItemID   int64      `json:"item_id"`
	Kind     StepKind   `json:"kind"`
	ToWallet string     `json:"to_wallet"`
	Amount   string     `json:"amount"`
	Status   StepStatus `json:"status"`
	TxHash   string     `json:"tx_hash,omitempty"`
	Error    string     `json:"error,omitempty"`
}

func (h *HTTP) processOrder(w http.ResponseWriter, r *http.Request) error {
	buyer, ok := auth.WalletFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "no authenticated wallet")
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	var req orderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	order := &Order{OrderID: req.OrderID, BuyerWallet: buyer}
	for _, item := range req.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return apperrors.BadRequestError(err, "invalid item price")
		}
		order.Items = append(order.Items, OrderItem{
			ItemID:       item.ItemID,
			ArtistWallet: item.ArtistWallet,
			Price:        price,
			Quantity:     item.Quantity,
		})
	}

	intent, processErr := h.processor.ProcessOrder(r.Context(), order)
	if processErr != nil && intent == nil {
		return apperrors.FromTokenError(processErr)
	}
	// A failed intent is still returned so the caller can see which step
	// broke; the status field carries the outcome.
	if processErr != nil && tola.KindOf(processErr) == tola.KindInvalidInput {
		return apperrors.FromTokenError(processErr)
	}

	return apphttp.WriteOK(w, toIntentResponse(intent))
}

func (h *HTTP) getIntent(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "intentID")

	intent, err := h.store.GetIntent(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrIntentNotFound) {
			return apperrors.ResourceNotFoundError(err, "payment intent not found")
		}
		return apperrors.GeneralError(err)
	}

	return apphttp.WriteOK(w, toIntentResponse(intent))
}

func toIntentResponse(intent *Intent) intentResponse {
	resp := intentResponse{
		ID:          intent.ID,
		OrderID:     intent.OrderID,
		BuyerWallet: intent.BuyerWallet,
		Total:       intent.Total.String(),
		Status:      intent.Status,
	}
	for _, step := range intent.Steps {
		resp.Steps = append(resp.Steps, stepResponse{
			ItemID:   step.ItemID,
			Kind:     step.Kind,
			ToWallet: step.ToWallet,
			Amount:   step.Amount.String(),
			Status:   step.Status,
			TxHash:   step.TxHash,
			Error:    step.Error,
		})
	}
	return resp
}
