package handler

import (
	"log/slog"

	"marketchat/backend/internal/chathub"
	"marketchat/backend/internal/storage"
	"marketchat/backend/internal/token"
)

// Handler bundles the dependencies of every HTTP endpoint.
type Handler struct {
	Hub     *chathub.Hub
	Storage storage.Storage
	Tokens  *token.Service
	Logger  *slog.Logger
}

func NewHandler(hub *chathub.Hub, s storage.Storage, tokens *token.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Hub: hub, Storage: s, Tokens: tokens, Logger: logger}
}
