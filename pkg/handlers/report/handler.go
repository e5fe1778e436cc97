package report

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/adapters"
	"github.com/de-tools/cost-atlas/pkg/models/api"
	"github.com/de-tools/cost-atlas/pkg/models/domain"
	"github.com/de-tools/cost-atlas/pkg/services/cost"
)

type Handler struct {
	service cost.Service
	now     func() time.Time
}

func NewHandler(service cost.Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapSourceNamesToApi(h.service.Sources()))
}

// GetReport serves GET /reports. Without a sources parameter every configured source is used.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	req, err := h.parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.Analyze(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Msg("failed to analyze costs")
		http.Error(w, "failed to analyze costs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, adapters.MapReportDomainToApi(report))
}

// FlushCache serves DELETE /reports/cache, optionally limited to one source
func (h *Handler) FlushCache(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	n := h.service.InvalidateCache(source)

	zerolog.Ctx(r.Context()).Info().
		Str("source", source).
		Int("entries", n).
		Msg("report cache flushed")
	writeJSON(w, r, http.StatusOK, api.CacheFlush{Source: source, Entries: n})
}

func (h *Handler) parseRequest(r *http.Request) (cost.Request, error) {
	params := r.URL.Query()

	days := 0
	if raw := params.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return cost.Request{}, errors.New("invalid 'days' value. Expected a positive integer")
		}
		days = n
	}
	start, end, err := cost.ParseWindow(params.Get("start"), params.Get("end"), days, h.now())
	if err != nil {
		return cost.Request{}, err
	}

	filter, err := cost.ParseFilter(params["filter"])
	if err != nil {
		return cost.Request{}, err
	}

	sources := cost.SplitList(params["sources"]...)
	if len(sources) == 0 {
		sources = h.service.Sources()
	}

	noCache, _ := strconv.ParseBool(params.Get("refresh"))
	return cost.Request{
		Sources: sources,
		NoCache: noCache,
		Query: cost.Query{
			Start:       start,
			End:         end,
			Granularity: domain.Granularity(params.Get("granularity")),
			Dimensions:  cost.SplitList(params["dimensions"]...),
			Filter:      filter,
			Scope:       params.Get("scope"),
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
