package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"rdmcal/internal/calendar"
	"rdmcal/internal/config"
	"rdmcal/internal/events"
	"rdmcal/internal/filter"
	"rdmcal/internal/ics"
	appLog "rdmcal/internal/log"
	"rdmcal/internal/metrics"
	"rdmcal/internal/model"
	"rdmcal/internal/view"
)

// Server exposes the projection engine over HTTP for the presentation
// layer. Filter state lives in the client and arrives as the `tags` query
// parameter on every request.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	// now is replaceable in tests.
	now func() time.Time

	catalogMu sync.RWMutex
	catalog   events.Catalog
}

// NewServer constructs a new Server serving cat.
func NewServer(cfg *config.Config, cat events.Catalog) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		now:     time.Now,
		catalog: cat,
	}
	s.registerRoutes()
	return s
}

// SetCatalog swaps in a freshly loaded catalog.
func (s *Server) SetCatalog(cat events.Catalog) {
	s.catalogMu.Lock()
	s.catalog = cat
	s.catalogMu.Unlock()
}

func (s *Server) currentCatalog() events.Catalog {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="rdmcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/tags", s.handleTags)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/day", s.handleDay)
	s.mux.HandleFunc("GET /calendar.ics", s.handleExport)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	cat := s.currentCatalog()
	f := filterFromQuery(r.URL.Query(), cat.Tags)
	writeJSON(w, http.StatusOK, f.Tags())
}

// eventDTO is the list view of one event.
type eventDTO struct {
	UID       string     `json:"uid"`
	Name      string     `json:"name"`
	Link      string     `json:"link"`
	NextLink  string     `json:"next_link"`
	Tags      []string   `json:"tags"`
	DateFrom  model.Date `json:"date_from"`
	DateTo    model.Date `json:"date_to"`
	DateRange string     `json:"date_range"`
	Location  string     `json:"location,omitempty"`
	Info      string     `json:"info,omitempty"`
}

// handleEvents returns the visible events in start-date order.
//
// GET /api/events?tags=AI,Librarian
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	cat := s.currentCatalog()
	f := filterFromQuery(r.URL.Query(), cat.Tags)

	out := make([]eventDTO, 0, len(cat.Events))
	for _, ev := range cat.Events {
		if !f.Visible(ev) {
			continue
		}
		out = append(out, eventDTO{
			UID:       ics.EventUID(ev.Name, ev.Occurrence.From),
			Name:      ev.Name,
			Link:      ev.Link,
			NextLink:  ev.EffectiveLink(),
			Tags:      ev.Tags,
			DateFrom:  ev.Occurrence.From,
			DateTo:    ev.Occurrence.End(),
			DateRange: ev.DateRange(),
			Location:  ev.Occurrence.Location,
			Info:      ev.Occurrence.Info,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// calendarResponse wraps a grid with navigation targets.
type calendarResponse struct {
	calendar.Grid
	Prev monthRef `json:"prev"`
	Next monthRef `json:"next"`
}

type monthRef struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// handleCalendar projects one month.
//
// GET /api/calendar?year=2024&month=3&tags=AI
//   - year/month default to the current month in the configured timezone.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat := s.currentCatalog()
	today := s.today()

	year := parseIntDefault(q.Get("year"), today.Year)
	month := parseIntDefault(q.Get("month"), int(today.Month))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	st := view.State{Filter: filterFromQuery(q, cat.Tags)}.Update(view.GoTo{Year: year, Month: time.Month(month)})
	grid := st.Grid(cat.Events, calendar.ProjectOptions{
		WeekStart: s.cfg.FirstWeekday(),
		Today:     today,
	})
	prev := st.Update(view.PrevMonth{})
	next := st.Update(view.NextMonth{})

	writeJSON(w, http.StatusOK, calendarResponse{
		Grid: grid,
		Prev: monthRef{Year: prev.Year, Month: prev.Month},
		Next: monthRef{Year: next.Year, Month: next.Month},
	})
}

// handleDay returns the summaries for a single date.
//
// GET /api/day?date=2024-03-31&tags=AI
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, err := model.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	cat := s.currentCatalog()
	st := view.State{Filter: filterFromQuery(q, cat.Tags)}
	summaries := st.Day(cat.Events, d)
	if summaries == nil {
		summaries = []model.Summary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// handleExport serves the iCalendar export of the visible events.
//
// GET /calendar.ics?tags=AI
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	cat := s.currentCatalog()
	f := filterFromQuery(r.URL.Query(), cat.Tags)

	body, err := ics.Export(cat.Events, f.Predicate(), ics.ExportOptions{Now: s.now})
	if errors.Is(err, ics.ErrNoEvents) {
		writeError(w, http.StatusNotFound, ics.NoEventsMessage)
		return
	}
	if err != nil {
		appLog.Error("export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ics.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) today() model.Date {
	return model.DateOf(s.now().In(s.cfg.Location()))
}

// filterFromQuery builds the filter for a request. Without a `tags`
// parameter every tag is active; `tags=` with no value activates none.
func filterFromQuery(q url.Values, vocabulary []string) *filter.State {
	raw, ok := q["tags"]
	if !ok {
		return filter.New(vocabulary)
	}
	selected := make([]string, 0)
	for _, v := range raw {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				selected = append(selected, t)
			}
		}
	}
	return filter.FromQuery(vocabulary, selected)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
