package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bobmcallan/twindex/internal/common"
	"github.com/bobmcallan/twindex/internal/models"
)

// indexResponse is the wire format for /api/index: the snapshot plus
// request-scoped time fields.
type indexResponse struct {
	models.IndexSnapshot
	RequestTime int64  `json:"request_time"`
	ServerTime  string `json:"server_time"`
}

// handleIndex serves the current index snapshot. refresh=true forces a
// blocking refresh; otherwise a snapshot whose scheduling staleness is
// already exceeded is refreshed before responding. The non-forced read path
// itself never blocks once a snapshot exists.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	force := strings.EqualFold(r.URL.Query().Get("refresh"), "true")

	snap := s.app.QuoteService.Current(r.Context())
	if force || s.app.QuoteService.Stale() {
		s.logger.Info().Bool("forced", force).Msg("Blocking refresh from read endpoint")
		snap = s.app.QuoteService.Refresh(r.Context())
	}

	now := time.Now()
	WriteJSON(w, http.StatusOK, indexResponse{
		IndexSnapshot: snap,
		RequestTime:   now.Unix(),
		ServerTime:    now.Format("2006-01-02 15:04:05"),
	})
}

// handleHealth responds to GET/HEAD /api/health with {"status":"ok"}.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds with version info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
