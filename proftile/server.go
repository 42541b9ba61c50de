package proftile

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"
)

// Server exposes a DataSourceMut over HTTP, GET-only, zstd-framed-CBOR
// bodies, dispatching on the entry/tile slug path. A DataSourceMut is
// assumed cheap to query (it is itself usually an ArchiveReader, or a
// Generator backed by in-memory caches), so the server simply serializes
// access to it behind a mutex rather than caching responses itself.
type Server struct {
	Source     DataSourceMut
	Logger     *log.Logger
	CORSOrigin string

	mu      sync.Mutex
	metrics *serverMetrics
}

// NewServer wraps source for HTTP access. reg may be nil to skip metrics
// registration (e.g. in tests).
func NewServer(source DataSourceMut, logger *log.Logger, reg prometheus.Registerer) *Server {
	return &Server{
		Source:     source,
		Logger:     logger,
		CORSOrigin: "*",
		metrics:    newServerMetrics(reg),
	}
}

var tileRoutePattern = regexp.MustCompile(`^/(summary_tile|slot_tile|slot_meta_tile)/([^/]+)/([^/]+)$`)

func (s *Server) get(ctx context.Context, path string, query map[string][]string) (route string, status int, body []byte) {
	if path == "/info" {
		route = "info"
		s.mu.Lock()
		info := s.Source.FetchInfo()
		s.mu.Unlock()
		frame, err := EncodeFrame(info)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Printf("failed to encode info: %v", err)
			}
			s.metrics.backendFetchErrors.WithLabelValues(route).Inc()
			return route, 500, []byte("internal error")
		}
		return route, 200, frame
	}

	m := tileRoutePattern.FindStringSubmatch(path)
	if m == nil {
		return "404", 404, []byte("path not found")
	}
	route = m[1]

	entryID, err := ParseEntryID(m[2])
	if err != nil {
		return route, 400, []byte("invalid entry slug")
	}
	tileID, err := ParseTileID(m[3])
	if err != nil {
		return route, 400, []byte("invalid tile slug")
	}
	full := false
	if v, ok := query["full"]; ok && len(v) > 0 {
		full = v[0] == "true" || v[0] == "1"
	}

	s.mu.Lock()
	var (
		frame []byte
		encErr error
		fetchErr error
	)
	switch route {
	case "summary_tile":
		var tile SummaryTile
		tile, fetchErr = s.Source.FetchSummaryTile(entryID, tileID, full)
		if fetchErr == nil {
			frame, encErr = EncodeFrame(tile.Data)
		}
	case "slot_tile":
		var tile SlotTile
		tile, fetchErr = s.Source.FetchSlotTile(entryID, tileID, full)
		if fetchErr == nil {
			frame, encErr = EncodeFrame(tile.Data)
		}
	case "slot_meta_tile":
		var tile SlotMetaTile
		tile, fetchErr = s.Source.FetchSlotMetaTile(entryID, tileID, full)
		if fetchErr == nil {
			frame, encErr = EncodeFrame(tile.Data)
		}
	}
	s.mu.Unlock()

	if fetchErr != nil {
		if s.Logger != nil {
			s.Logger.Printf("fetch failed for %s: %v", path, fetchErr)
		}
		s.metrics.backendFetchErrors.WithLabelValues(route).Inc()
		return route, 500, []byte("internal error")
	}
	if encErr != nil {
		s.metrics.backendFetchErrors.WithLabelValues(route).Inc()
		return route, 500, []byte("internal error")
	}
	return route, 200, frame
}

// ServeHTTP implements http.Handler. CORS is applied by Handler(), which
// wraps this method; call this directly only from tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	tracker := s.metrics.startRequest("")
	s.metrics.outstandingRequests.Inc()
	route, status, body := s.get(r.Context(), r.URL.Path, r.URL.Query())
	s.metrics.outstandingRequests.Dec()
	tracker.route = route
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(status)
	w.Write(body)
	tracker.finish(status, len(body))
}

// Handler returns an http.Handler with CORS applied: any origin, GET/POST,
// Authorization/Accept/Content-Type headers, max-age 3600.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Accept", "Content-Type"},
		MaxAge:           3600,
		AllowCredentials: false,
	})
	return c.Handler(s)
}
