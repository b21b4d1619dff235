package wallet

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/vortexartec/tola-ledger/pkg/app/errors"
	apphttp "github.com/vortexartec/tola-ledger/pkg/app/http"
	"github.com/vortexartec/tola-ledger/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterPublicRoutes registers the unauthenticated wallet endpoints:
// provider discovery and the challenge/verify handshake.
func RegisterPublicRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Get("/wallet/providers", apphttp.HandleError(h.providers))
	r.Post("/wallet/challenge", apphttp.HandleError(h.challenge))
	r.Post("/wallet/verify", apphttp.HandleError(h.verify))
}

// RegisterProtectedRoutes registers wallet endpoints that require a session.
func RegisterProtectedRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Post("/wallet/disconnect", apphttp.HandleError(h.disconnect))
	r.Get("/wallet/connection", apphttp.HandleError(h.connection))
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}
	return nil
}

func (h *HTTP) providers(w http.ResponseWriter, r *http.Request) error {
	network := r.URL.Query().Get("network")

	providers, err := h.service.Providers(network)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, map[string]any{
		"network":   network,
		"providers": providers,
	})
}

type challengeRequest struct {
	Wallet   string `json:"wallet"`
	Network  string `json:"network"`
	Provider string `json:"provider"`
}

func (h *HTTP) challenge(w http.ResponseWriter, r *http.Request) error {
	var req challengeRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	challenge, err := h.service.Challenge(r.Context(), req.Wallet, req.Network, req.Provider)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, challenge)
}

type verifyRequest struct {
	Wallet    string `json:"wallet"`
	Signature string `json:"signature"`
}

func (h *HTTP) verify(w http.ResponseWriter, r *http.Request) error {
	var req verifyRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	result, err := h.service.Verify(r.Context(), req.Wallet, req.Signature)
	if err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, result)
}

func (h *HTTP) disconnect(w http.ResponseWriter, r *http.Request) error {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "no authenticated wallet")
	}

	if err := h.service.Disconnect(r.Context(), wallet); err != nil {
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, map[string]string{"wallet": wallet, "status": "disconnected"})
}

func (h *HTTP) connection(w http.ResponseWriter, r *http.Request) error {
	wallet, ok := auth.WalletFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "no authenticated wallet")
	}

	conn, err := h.service.Connection(r.Context(), wallet)
	if err != nil {
		if errors.Is(err, ErrConnectionNotFound) {
			return apperrors.ResourceNotFoundError(err, "wallet is not connected")
		}
		return apperrors.FromTokenError(err)
	}

	return apphttp.WriteOK(w, conn)
}
