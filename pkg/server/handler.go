// Package server exposes a blend session over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"blend-swap/pkg/approval"
	"blend-swap/pkg/blend"
	"blend-swap/pkg/session"
	"blend-swap/pkg/types"
)

// Session is the blend session the handlers drive.
type Session interface {
	State() blend.State
	View(ctx context.Context) *types.BlendView
	Dispatch(action blend.Action) (blend.State, error)
	Undo() (blend.State, bool, error)
	Reset() (blend.State, error)
	Approve(ctx context.Context, i int) (common.Hash, error)
	Submit(ctx context.Context) (common.Hash, error)
	Transactions() []types.TxView
}

type Handler struct {
	logger  *slog.Logger
	session Session
	tokens  blend.TokenLookup
}

func NewHandler(logger *slog.Logger, sess Session, tokens blend.TokenLookup) *Handler {
	return &Handler{
		logger:  logger,
		session: sess,
		tokens:  tokens,
	}
}

type LegRequest struct {
	Token  *string `json:"token"`
	Amount *string `json:"amount"`
}

type OutputRequest struct {
	Token string `json:"token"`
}

type RecipientRequest struct {
	Recipient *string `json:"recipient"`
}

type HashResponse struct {
	Hash string `json:"hash"`
}

func (h *Handler) GetBlend() fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) AddLeg() fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := h.session.Dispatch(blend.AddInput()); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) UpdateLeg() fiber.Handler {
	return func(c fiber.Ctx) error {
		i, err := h.legIndex(c)
		if err != nil {
			return err
		}

		var req LegRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind leg update", "err", err)
			return ErrInvalidBody
		}
		if req.Token == nil && req.Amount == nil {
			return ErrNothingToUpdate
		}

		if req.Token != nil {
			id, err := h.resolve(c.Context(), *req.Token)
			if err != nil {
				return err
			}
			if _, err := h.session.Dispatch(blend.SelectInput(i, id)); err != nil {
				return err
			}
		}
		if req.Amount != nil {
			if _, err := h.session.Dispatch(blend.TypeInput(i, *req.Amount)); err != nil {
				return err
			}
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) RemoveLeg() fiber.Handler {
	return func(c fiber.Ctx) error {
		i, err := h.legIndex(c)
		if err != nil {
			return err
		}
		if _, err := h.session.Dispatch(blend.RemoveInput(i)); err != nil {
			if errors.Is(err, session.ErrLastLeg) {
				return ErrLastLeg
			}
			return err
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) SetOutput() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req OutputRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind output update", "err", err)
			return ErrInvalidBody
		}
		if req.Token == "" {
			return ErrTokenRequired
		}

		id, err := h.resolve(c.Context(), req.Token)
		if err != nil {
			return err
		}
		if _, err := h.session.Dispatch(blend.SelectOutput(id)); err != nil {
			return err
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

// SetRecipient sets or clears the recipient. A null recipient means the sender.
func (h *Handler) SetRecipient() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req RecipientRequest
		if err := c.Bind().Body(&req); err != nil {
			h.logger.Debug("failed to bind recipient update", "err", err)
			return ErrInvalidBody
		}
		if req.Recipient != nil && !common.IsHexAddress(*req.Recipient) {
			return ErrInvalidRecipient
		}
		if _, err := h.session.Dispatch(blend.SetRecipient(req.Recipient)); err != nil {
			return err
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) Undo() fiber.Handler {
	return func(c fiber.Ctx) error {
		_, ok, err := h.session.Undo()
		if err != nil {
			return err
		}
		if !ok {
			return ErrNothingToUndo
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) Reset() fiber.Handler {
	return func(c fiber.Ctx) error {
		if _, err := h.session.Reset(); err != nil {
			return err
		}
		return c.JSON(h.session.View(c.Context()))
	}
}

func (h *Handler) Approve() fiber.Handler {
	return func(c fiber.Ctx) error {
		i, err := h.legIndex(c)
		if err != nil {
			return err
		}

		hash, err := h.session.Approve(c.Context(), i)
		if err != nil {
			return h.handleApprovalError(err)
		}
		h.logger.Debug("approval requested", "index", i, "hash", hash.Hex())
		return c.Status(fiber.StatusAccepted).JSON(HashResponse{Hash: hash.Hex()})
	}
}

func (h *Handler) Submit() fiber.Handler {
	return func(c fiber.Ctx) error {
		hash, err := h.session.Submit(c.Context())
		if err != nil {
			return h.handleSubmitError(err)
		}
		h.logger.Debug("blend requested", "hash", hash.Hex())
		return c.Status(fiber.StatusAccepted).JSON(HashResponse{Hash: hash.Hex()})
	}
}

func (h *Handler) ListTransactions() fiber.Handler {
	return func(c fiber.Ctx) error {
		txs := h.session.Transactions()
		if txs == nil {
			txs = []types.TxView{}
		}
		return c.JSON(txs)
	}
}

func (h *Handler) legIndex(c fiber.Ctx) (int, error) {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, ErrInvalidIndex
	}
	if i < 0 || i >= h.session.State().LegCount {
		return 0, ErrLegNotFound
	}
	return i, nil
}

func (h *Handler) resolve(ctx context.Context, id string) (string, error) {
	cur, err := h.tokens.Resolve(ctx, id)
	if err != nil {
		h.logger.Debug("token lookup failed", "token", id, "err", err)
		return "", NewUnknownToken(id)
	}
	return cur.ID(), nil
}

func (h *Handler) handleApprovalError(err error) error {
	switch {
	case errors.Is(err, approval.ErrInvalidIndex):
		return ErrLegNotFound
	case errors.Is(err, approval.ErrApprovalNotNeeded):
		return ErrApprovalNotNeeded
	case errors.Is(err, approval.ErrMissingPrerequisite):
		return NewUnprocessable(err)
	default:
		h.logger.Error("approval failed", "err", err)
		return ErrChainFailure
	}
}

func (h *Handler) handleSubmitError(err error) error {
	switch {
	case errors.Is(err, blend.ErrNotApproved):
		return ErrNotApproved
	case errors.Is(err, blend.ErrNoMinimumOutput),
		errors.Is(err, blend.ErrNoInputs),
		errors.Is(err, blend.ErrNoContract),
		errors.Is(err, blend.ErrNoRecipient):
		return NewUnprocessable(err)
	default:
		h.logger.Error("blend failed", "err", err)
		return ErrChainFailure
	}
}
