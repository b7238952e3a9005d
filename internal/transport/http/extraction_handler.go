// Package http exposes the thin HTTP surface over the extraction
// engine: trigger a run, read the latest summaries. All algorithmic
// work lives behind the pipeline; handlers only translate.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"mediapulse/internal/config"
	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/pipeline"
	"mediapulse/internal/store"
)

// ExtractionHandler handles extraction-related HTTP requests
type ExtractionHandler struct {
	runner     *pipeline.Runner
	campaigns  map[string]config.Campaign
	summaries  *store.SummaryWriter
	runTimeout time.Duration
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(runner *pipeline.Runner, campaigns map[string]config.Campaign, summaries *store.SummaryWriter, runTimeout time.Duration, logger *slog.Logger) *ExtractionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionHandler{
		runner:     runner,
		campaigns:  campaigns,
		summaries:  summaries,
		runTimeout: runTimeout,
		validate:   validator.New(),
		logger:     logger.With(slog.String("handler", "extraction")),
	}
}

// campaignParam validates and looks up the campaign path parameter.
func (h *ExtractionHandler) campaignParam(r *http.Request) (config.Campaign, *apperrors.APIError) {
	key := chi.URLParam(r, "campaign")
	if err := h.validate.Var(key, "required,max=64"); err != nil {
		return config.Campaign{}, apperrors.NewWithDetails(http.StatusBadRequest,
			"INVALID_CAMPAIGN_KEY", "campaign key must be 1-64 characters", key)
	}
	campaign, ok := h.campaigns[key]
	if !ok {
		return config.Campaign{}, apperrors.CampaignNotFoundError(key)
	}
	return campaign, nil
}

// Routes returns the handler's route tree
func (h *ExtractionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/campaigns", h.ListCampaigns)
	r.Post("/extract/{campaign}", h.Extract)
	r.Get("/campaigns/{campaign}/summary", h.Summary)
	return r
}

// ListCampaigns handles GET /api/campaigns
func (h *ExtractionHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	keys := make([]string, 0, len(h.campaigns))
	for key := range h.campaigns {
		keys = append(keys, key)
	}
	render.JSON(w, r, map[string]interface{}{"campaigns": keys})
}

// Extract handles POST /api/extract/{campaign}. The request blocks for
// the duration of the run; a degraded run still returns 200 with the
// warning list embedded, a fatal run returns the failure envelope.
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	campaign, apiErr := h.campaignParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}

	ctx := r.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	report, err := h.runner.Run(ctx, campaign)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "extraction run failed",
			slog.String("campaign", campaign.Key),
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ExtractionFailedError(err))
		return
	}

	render.JSON(w, r, report)
}

// Summary handles GET /api/campaigns/{campaign}/summary
func (h *ExtractionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	campaign, apiErr := h.campaignParam(r)
	if apiErr != nil {
		render.Render(w, r, apiErr)
		return
	}
	key := campaign.Key

	artifact, err := h.summaries.Read(r.Context(), key)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrTypeNotFound {
			render.Render(w, r, apperrors.NewWithDetails(http.StatusNotFound, "SUMMARY_NOT_FOUND",
				"no summary generated yet for campaign", key))
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to read summary",
			slog.String("campaign", key),
			slog.String("error", err.Error()))
		render.Render(w, r, apperrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, artifact)
}
