package handler

import (
	"roomchat/backend/internal/chathub"
	"roomchat/backend/internal/storage"
)

// Handler holds the coordinator and the store for the HTTP surface.
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Storage
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage) *Handler {
	return &Handler{Hub: hub, Storage: s}
}
