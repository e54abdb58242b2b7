package handlers

import (
	"github.com/rs/zerolog"

	"github.com/IGRA27/conversations-api-cloudant/internal/cache"
	"github.com/IGRA27/conversations-api-cloudant/internal/conversation"
	"github.com/IGRA27/conversations-api-cloudant/internal/store"
)

// Handler is the core struct with all dependencies
type Handler struct {
	svc   *conversation.Service
	cache *cache.ListCache
	store store.Store
	log   zerolog.Logger
}

// NewHandler creates a new handler instance
func NewHandler(svc *conversation.Service, listCache *cache.ListCache, st store.Store, log zerolog.Logger) *Handler {
	return &Handler{
		svc:   svc,
		cache: listCache,
		store: st,
		log:   log.With().Str("component", "handlers").Logger(),
	}
}
