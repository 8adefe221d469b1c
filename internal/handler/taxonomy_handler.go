package handler

import (
	"net/http"

	"ideaboard/internal/domain"
	"ideaboard/internal/middleware"
	"ideaboard/internal/service"
	"ideaboard/pkg/errors"
	"ideaboard/pkg/logger"
)

// TaxonomyHandler serves the listing filter options
type TaxonomyHandler struct {
	taxonomy service.TaxonomyService
	logger   *logger.Logger
}

func NewTaxonomyHandler(taxonomy service.TaxonomyService, logger *logger.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		taxonomy: taxonomy,
		logger:   logger.Named("taxonomy_handler"),
	}
}

// Categories handles GET /api/categories
func (h *TaxonomyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomy.Categories(r.Context())
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to list categories", err), h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]domain.Category{"categories": categories})
}

// Statuses handles GET /api/statuses
func (h *TaxonomyHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.taxonomy.Statuses(r.Context())
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to list statuses", err), h.logger)
		return
	}
	respondJSON(w, http.StatusOK, map[string][]domain.Status{"statuses": statuses})
}
