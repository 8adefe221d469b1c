package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ideaboard/internal/domain"
	"ideaboard/internal/middleware"
	"ideaboard/internal/service"
	"ideaboard/internal/view"
	"ideaboard/pkg/errors"
	"ideaboard/pkg/logger"
)

// IdeaHandler serves the idea listing and the vote button
type IdeaHandler struct {
	ideas     service.IdeaService
	votes     service.VoteService
	loginPath string
	logger    *logger.Logger
}

func NewIdeaHandler(ideas service.IdeaService, votes service.VoteService, loginPath string, logger *logger.Logger) *IdeaHandler {
	return &IdeaHandler{
		ideas:     ideas,
		votes:     votes,
		loginPath: loginPath,
		logger:    logger.Named("ideas_handler"),
	}
}

// IdeaListResponse is the body of GET /api/ideas
type IdeaListResponse struct {
	Ideas []domain.IdeaSummary `json:"ideas"`
	Total int                  `json:"total"`
}

// voteRequest carries the counter state the client is showing. Either field
// may be absent, in which case the state is read from the store.
type voteRequest struct {
	VotesCount *int  `json:"votes_count"`
	HasVoted   *bool `json:"has_voted"`
}

func (v voteRequest) complete() bool {
	return v.VotesCount != nil && v.HasVoted != nil
}

// List handles GET /api/ideas
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, appErr := parseFilter(r)
	if appErr != nil {
		middleware.WriteError(w, r, appErr, h.logger)
		return
	}

	viewer := middleware.GateFromRequest(r).CurrentIdentity()
	summaries, err := h.ideas.List(r.Context(), filter, viewer)
	if err != nil {
		middleware.WriteError(w, r, errors.NewInternalError("Failed to list ideas", err), h.logger)
		return
	}

	respondJSON(w, http.StatusOK, IdeaListResponse{Ideas: summaries, Total: len(summaries)})
}

// Show handles GET /api/ideas/{ideaID}
func (h *IdeaHandler) Show(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := h.ideaID(w, r)
	if !ok {
		return
	}

	viewer := middleware.GateFromRequest(r).CurrentIdentity()
	summary, err := h.ideas.Get(r.Context(), ideaID, viewer)
	if err != nil {
		h.writeIdeaError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Vote handles POST /api/ideas/{ideaID}/vote. The counter state sent by the
// client is adjusted by one in the direction of the toggle and echoed back.
func (h *IdeaHandler) Vote(w http.ResponseWriter, r *http.Request) {
	ideaID, ok := h.ideaID(w, r)
	if !ok {
		return
	}

	req, err := decodeVoteRequest(r)
	if err != nil {
		middleware.WriteError(w, r, errors.NewValidationError("Invalid vote request", map[string]interface{}{
			"reason": err.Error(),
		}), h.logger)
		return
	}

	gate := middleware.GateFromRequest(r)

	var counter *view.IdeaCounter
	if req.complete() {
		counter = view.NewIdeaCounter(domain.Idea{ID: ideaID}, *req.VotesCount, *req.HasVoted, h.votes, view.WithLoginPath(h.loginPath))
	} else {
		// Anonymous callers are redirected before the store is read
		if !gate.IsAuthenticated() {
			middleware.RedirectToLogin(w, r, h.loginPath)
			return
		}
		summary, err := h.ideas.Get(r.Context(), ideaID, gate.CurrentIdentity())
		if err != nil {
			h.writeIdeaError(w, r, err)
			return
		}
		counter = view.FromSummary(*summary, h.votes, view.WithLoginPath(h.loginPath))
	}

	result, err := counter.OnVoteAction(r.Context(), gate)
	if err != nil {
		h.writeIdeaError(w, r, err)
		return
	}
	if result.Redirected() {
		middleware.RedirectToLogin(w, r, result.RedirectTo)
		return
	}

	respondJSON(w, http.StatusOK, counter.State())
}

// ideaID extracts the path id. Ids are UUIDs, so anything else cannot exist.
func (h *IdeaHandler) ideaID(w http.ResponseWriter, r *http.Request) (string, bool) {
	ideaID := chi.URLParam(r, "ideaID")
	if _, err := uuid.Parse(ideaID); err != nil {
		middleware.WriteError(w, r, errors.NewNotFoundError("Idea not found"), h.logger)
		return "", false
	}
	return ideaID, true
}

func (h *IdeaHandler) writeIdeaError(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, domain.ErrIdeaNotFound) {
		middleware.WriteError(w, r, errors.NewNotFoundError("Idea not found"), h.logger)
		return
	}
	middleware.WriteError(w, r, errors.NewInternalError("Failed to process idea request", err), h.logger)
}

func parseFilter(r *http.Request) (domain.IdeaFilter, *errors.AppError) {
	var filter domain.IdeaFilter
	query := r.URL.Query()

	for name, target := range map[string]*int{
		"category_id": &filter.CategoryID,
		"status_id":   &filter.StatusID,
	} {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return filter, errors.NewValidationError("Invalid filter", map[string]interface{}{
				"field": name,
				"value": raw,
			})
		}
		*target = value
	}
	return filter, nil
}

// decodeVoteRequest accepts JSON or form bodies; htmx posts forms by default
func decodeVoteRequest(r *http.Request) (voteRequest, error) {
	var req voteRequest
	if r.Body == nil {
		return req, nil
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		if raw := r.PostForm.Get("votes_count"); raw != "" {
			count, err := strconv.Atoi(raw)
			if err != nil {
				return req, stderrors.New("votes_count must be an integer")
			}
			req.VotesCount = &count
		}
		if raw := r.PostForm.Get("has_voted"); raw != "" {
			voted, err := strconv.ParseBool(raw)
			if err != nil {
				return req, stderrors.New("has_voted must be a boolean")
			}
			req.HasVoted = &voted
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !stderrors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}
