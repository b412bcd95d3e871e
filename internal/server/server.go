// Package server is a reference change backend for the grid.
//
// It keeps its own copy of the table, checks every change with the
// built-in validator and applies the accepted ones, so that the editor
// can be run end to end against a real HTTP backend.
package server

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/gridstorm/internal/backend"
	"github.com/dshills/gridstorm/internal/calendar"
	"github.com/dshills/gridstorm/internal/column"
	"github.com/dshills/gridstorm/internal/table"
	"github.com/dshills/gridstorm/internal/validate"
)

// Reply messages.
const (
	MsgBadRequest  = "malformed change request"
	MsgInvalidKey  = "invalid key"
	MsgNoSuchCell  = "no such cell"
	MsgNoSuchRow   = "no such row"
	MsgUnknownTask = "unknown task"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server serves a table over HTTP.
type Server struct {
	mu   sync.Mutex
	tbl  *table.Table
	dict *column.Dictionary

	validate validate.Func
	key      string
	format   calendar.Format
	entries  map[string][]string
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Server) {
		s.log = entry
	}
}

// WithValidator replaces the built-in validator.
func WithValidator(fn validate.Func) Option {
	return func(s *Server) {
		if fn != nil {
			s.validate = fn
		}
	}
}

// WithKey makes change requests carry a matching key field.
func WithKey(key string) Option {
	return func(s *Server) {
		s.key = key
	}
}

// WithDateFormat sets the date format of calendar grids.
func WithDateFormat(f calendar.Format) Option {
	return func(s *Server) {
		s.format = f
	}
}

// WithEntries annotates calendar days. Keys are dates in the date format.
func WithEntries(entries map[string][]string) Option {
	return func(s *Server) {
		s.entries = entries
	}
}

// WithClock sets the time source of calendar fallbacks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server for tbl. A nil dictionary gives every column the
// default rule.
func New(tbl *table.Table, dict *column.Dictionary, opts ...Option) *Server {
	if dict == nil {
		dict = column.NewDictionary()
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := &Server{
		tbl:      tbl,
		dict:     dict,
		validate: validate.NewBuiltin().Func(),
		format:   calendar.FormatDE,
		now:      time.Now,
		log:      logrus.NewEntry(l),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Post("/change", s.handleChange)
	r.Get("/table", s.handleTable)
	r.Get("/calendar", s.handleCalendar)
	r.Post("/calendar", s.handleCalendar)
	return r
}

// SetDictionary replaces the column dictionary.
func (s *Server) SetDictionary(dict *column.Dictionary) {
	if dict == nil {
		dict = column.NewDictionary()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dict = dict
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"elapsed":    time.Since(start).Round(time.Microsecond),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

// handleChange validates and applies one cell change, or mirrors a row
// change of the editor. Failures are replied as {"error": msg}; success
// as {"result": html}.
func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil || !gjson.ValidBytes(body) {
		s.reply(w, http.StatusBadRequest, "error", MsgBadRequest)
		return
	}
	req := gjson.ParseBytes(body)

	if s.key != "" && req.Get("key").String() != s.key {
		s.reply(w, http.StatusForbidden, "error", MsgInvalidKey)
		return
	}
	row, col := req.Get("row"), req.Get("col")
	id := req.Get("id").String()

	switch task := req.Get("task").String(); task {
	case backend.TaskUpdate:
		if !row.Exists() || !col.Exists() {
			s.reply(w, http.StatusBadRequest, "error", MsgBadRequest)
			return
		}
		p := backend.Params{
			Task:   task,
			Value:  req.Get("value").String(),
			Row:    int(row.Int()),
			Col:    int(col.Int()),
			Column: req.Get("column").String(),
			ID:     id,
		}
		status, field, msg := s.apply(p)
		s.reply(w, status, field, msg)
	case backend.TaskInsert, backend.TaskCopy, backend.TaskDelete:
		if !row.Exists() {
			s.reply(w, http.StatusBadRequest, "error", MsgBadRequest)
			return
		}
		status, field, msg := s.applyRow(task, int(row.Int()), id)
		s.reply(w, status, field, msg)
	default:
		s.reply(w, http.StatusBadRequest, "error", MsgUnknownTask)
	}
}

// applyRow inserts, copies or deletes a body row the way the editor did.
func (s *Server) applyRow(task string, row int, id string) (status int, field, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch task {
	case backend.TaskInsert:
		_, err = s.tbl.InsertRow(row, s.refCols(row))
	case backend.TaskCopy:
		err = s.copyRow(row)
	case backend.TaskDelete:
		err = s.tbl.DeleteRow(row)
	}

	entry := s.log.WithFields(logrus.Fields{"id": id, "task": task, "row": row})
	if err != nil {
		entry.WithError(err).Info("row change refused")
		return http.StatusNotFound, "error", MsgNoSuchRow
	}
	entry.Info("row change applied")
	return http.StatusOK, "result", ""
}

// refCols is the cell count of a row inserted at before: that of the
// row it displaces, else of the last row.
func (s *Server) refCols(before int) int {
	switch {
	case s.tbl.IsBody(before):
		return s.tbl.ColCount(before)
	case s.tbl.NumRows() > 0:
		return s.tbl.ColCount(s.tbl.NumRows() - 1)
	}
	return max(s.dict.Len(), 1)
}

// copyRow inserts a copy of row above it, cells copied as escaped text.
func (s *Server) copyRow(row int) error {
	if !s.tbl.IsBody(row) {
		return &table.RangeError{Op: "copy row", Index: row, Min: s.tbl.NumHead(), Max: s.tbl.NumRows() - 1}
	}
	src := s.tbl.Row(row)
	dst, err := s.tbl.InsertRow(row, src.Len())
	if err != nil {
		return err
	}
	for i, cell := range src.Cells {
		dst.Cells[i].HTML = table.Escape(cell.Text())
	}
	return nil
}

// apply validates p and writes it into the table.
func (s *Server) apply(p backend.Params) (status int, field, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := table.Coord{Row: p.Row, Col: p.Col}
	cell := s.tbl.Cell(at)
	if cell == nil || !s.tbl.IsBody(p.Row) {
		return http.StatusNotFound, "error", MsgNoSuchCell
	}

	res := s.validate(p.Value, s.rule(p))
	entry := s.log.WithFields(logrus.Fields{"id": p.ID, "cell": at.String()})
	if !res.OK {
		entry.WithField("reason", res.Msg).Info("change rejected")
		return http.StatusOK, "error", res.Msg
	}

	cell.HTML = backend.Sanitize(table.Escape(res.Final(p.Value)))
	entry.Info("change applied")
	return http.StatusOK, "result", cell.HTML
}

// rule finds the rule of a change, by column name when given.
func (s *Server) rule(p backend.Params) column.Rule {
	if p.Column != "" {
		for _, r := range s.dict.Rules() {
			if r.Name == p.Column {
				return r
			}
		}
	}
	return s.dict.Rule(p.Col)
}

func (s *Server) handleTable(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tbl.WriteHTML(w); err != nil {
		s.log.WithError(err).Error("writing table")
	}
}

// handleCalendar serves a month grid. Month and year come from the query
// (m, y) or from a JSON body; a target field is echoed back.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, _ := strconv.Atoi(q.Get("m"))
	y, _ := strconv.Atoi(q.Get("y"))
	target := q.Get("target")

	if r.Method == http.MethodPost {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil || !gjson.ValidBytes(body) {
			s.reply(w, http.StatusBadRequest, "error", MsgBadRequest)
			return
		}
		req := gjson.ParseBytes(body)
		m, y = int(req.Get("m").Int()), int(req.Get("y").Int())
		target = req.Get("target").String()
	}

	month := calendar.Build(m, y, s.format, s.entries, s.now())
	out, err := sjson.SetBytes([]byte(`{}`), "result", month)
	if err == nil && target != "" {
		out, err = sjson.SetBytes(out, "target", target)
	}
	if err != nil {
		s.reply(w, http.StatusInternalServerError, "error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// reply writes {field: msg}.
func (s *Server) reply(w http.ResponseWriter, status int, field, msg string) {
	out, err := sjson.SetBytes([]byte(`{}`), field, msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
