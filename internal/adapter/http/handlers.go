package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/couchcryptid/storm-altitude-map/internal/domain"
	"github.com/couchcryptid/storm-altitude-map/internal/export"
	"github.com/couchcryptid/storm-altitude-map/internal/pipeline"
)

const maxFilterBody = 4 << 10

// Controller is the session surface driven by the HTTP API.
type Controller interface {
	ReadinessChecker
	SetTier(sel domain.TierSelector)
	SetRecencyMinutes(minutes int) error
	SetDownsampleCap(n int) error
	SetClustering(on bool)
	SetHeatmap(on bool)
	Flush() bool
	View() pipeline.View
	Frame() domain.Frame
	Export(w io.Writer) error
}

type handlers struct {
	session Controller
	logger  *slog.Logger
}

// filterPatch carries the controls that changed. Absent fields are left alone.
type filterPatch struct {
	Tier           *string `json:"tier"`
	RecencyMinutes *int    `json:"recency_minutes"`
	Clustering     *bool   `json:"clustering"`
	Heatmap        *bool   `json:"heatmap"`
	DownsampleCap  *int    `json:"downsample_cap"`
}

func (h *handlers) view(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.View())
}

func (h *handlers) frame(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Frame())
}

// patchFilter validates every field before applying any, so a bad request
// leaves the state untouched.
func (h *handlers) patchFilter(w http.ResponseWriter, r *http.Request) {
	var patch filterPatch
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFilterBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode filter: %w", err))
		return
	}

	var sel domain.TierSelector
	if patch.Tier != nil {
		parsed, err := domain.ParseTierSelector(*patch.Tier)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sel = parsed
	}
	if patch.RecencyMinutes != nil && *patch.RecencyMinutes < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: recency_minutes must be >= 0", domain.ErrInvalidFilter))
		return
	}
	if patch.DownsampleCap != nil && *patch.DownsampleCap < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: downsample_cap must be >= 0", domain.ErrInvalidFilter))
		return
	}

	if patch.Tier != nil {
		h.session.SetTier(sel)
	}
	if patch.RecencyMinutes != nil {
		if err := h.session.SetRecencyMinutes(*patch.RecencyMinutes); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}
	if patch.DownsampleCap != nil {
		if err := h.session.SetDownsampleCap(*patch.DownsampleCap); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}
	if patch.Clustering != nil {
		h.session.SetClustering(*patch.Clustering)
	}
	if patch.Heatmap != nil {
		h.session.SetHeatmap(*patch.Heatmap)
	}

	writeJSON(w, http.StatusAccepted, h.session.View())
}

func (h *handlers) recompute(w http.ResponseWriter, _ *http.Request) {
	h.session.Flush()
	writeJSON(w, http.StatusOK, h.session.View())
}

// export buffers the CSV so a write failure can still be reported as a 500.
func (h *handlers) export(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := h.session.Export(&buf); err != nil {
		h.logger.Error("export failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidFilter) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
