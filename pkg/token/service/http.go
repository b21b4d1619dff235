package service

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/vortexartec/tola-ledger/pkg/app/errors"
	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
)

const maxBodyBytes = 1 << 20 // 1MB

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers token endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/token/balance", apphttp.HandleError(h.balance))
	r.Post("/token/transfer", apphttp.HandleError(h.transfer))
	r.Post("/token/approve", apphttp.HandleError(h.approve))
	r.Get("/token/info", apphttp.HandleError(h.info))
	r.Post("/artwork/list", apphttp.HandleError(h.listArtwork))
	r.Post("/artwork/purchase", apphttp.HandleError(h.purchaseArtwork))
	r.Post("/artist/verify", apphttp.HandleError(h.verifyArtist))
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

type balanceRequest struct {
	Wallet string `json:"wallet"`
}

func (h *HTTP) balance(w http.ResponseWriter, r *http.Request) error {
	var req balanceRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	balance, err := h.service.GetBalance(r.Context(), req.Wallet)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, balance)
}

type transferRequest struct {
	From              string `json:"from"`
	To                string `json:"to"`
	Amount            string `json:"amount"`
	Note              string `json:"note"`
	RelatedEntityID   int64  `json:"related_entity_id"`
	RelatedEntityType string `json:"related_entity_type"`
}

func (h *HTTP) transfer(w http.ResponseWriter, r *http.Request) error {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	result, err := h.service.Transfer(r.Context(), req.From, req.To, req.Amount, &TransferOptions{
		Note:              req.Note,
		RelatedEntityID:   req.RelatedEntityID,
		RelatedEntityType: req.RelatedEntityType,
	})
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, result)
}

type approveRequest struct {
	Wallet string `json:"wallet"`
	Amount string `json:"amount"`
}

func (h *HTTP) approve(w http.ResponseWriter, r *http.Request) error {
	var req approveRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	result, err := h.service.Approve(r.Context(), req.Wallet, req.Amount)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, result)
}

func (h *HTTP) info(w http.ResponseWriter, r *http.Request) error {
	info, err := h.service.TokenInfo(r.Context())
	if err != nil {
		return apperrors.FromTokenError(err)
	}
	return apphttp.WriteOK(w, info)
}

type listArtworkRequest struct {
	ArtworkID    int64  `json:"artwork_id"`
	ArtistWallet string `json:"artist_wallet"`
	Price        string `json:"price"`
}

func (h *HTTP) listArtwork(w http.ResponseWriter, r *http.Request) error {
	var req listArtworkRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	txHash, err := h.service.ListArtwork(r.Context(), req.ArtworkID, req.ArtistWallet, req.Price)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, map[string]string{"tx_hash": txHash})
}

type purchaseRequest struct {
	ArtworkID   int64  `json:"artwork_id"`
	BuyerWallet string `json:"buyer_wallet"`
	Price       string `json:"price"`
}

func (h *HTTP) purchaseArtwork(w http.ResponseWriter, r *http.Request) error {
	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	result, err := h.service.PurchaseArtwork(r.Context(), req.ArtworkID, req.BuyerWallet, req.Price)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, result)
}

type verifyArtistRequest struct {
	ArtistID     int64  `json:"artist_id"`
	ArtistWallet string `json:"artist_wallet"`
	ActorWallet  string `json:"actor_wallet"`
}

func (h *HTTP) verifyArtist(w http.ResponseWriter, r *http.Request) error {
	var req verifyArtistRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	txHash, err := h.service.VerifyArtist(r.Context(), req.ArtistID, req.ArtistWallet, req.ActorWallet)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, map[string]string{"tx_hash": txHash})
}
