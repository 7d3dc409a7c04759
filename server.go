package main

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bodul/wordhunt/internal/solver"
)

//go:embed frontend
var frontendFS embed.FS

const maxUploadSize = 10 << 20 // 10 Mo

const maxJSONBody = 64 << 10

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{} // closed when the cleanup loop returns
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanup(time.Minute, 5*time.Minute)
	return rl
}

// cleanup forgets visitors idle for longer than ttl until close is called.
func (rl *rateLimiter) cleanup(every, ttl time.Duration) {
	defer close(rl.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > ttl {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// close stops the cleanup loop. Safe to call more than once.
func (rl *rateLimiter) close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux        *http.ServeMux
	store      *Store
	recognizer Recognizer
	solver     *solver.Solver
	gridSize   int
	events     *EventHub
	uploadRL   *rateLimiter
	editRL     *rateLimiter
	solveRL    *rateLimiter
}

// NewServer creates a configured HTTP server. recognizer may be nil, in
// which case screenshot uploads are refused.
func NewServer(store *Store, recognizer Recognizer, slv *solver.Solver, gridSize int) *Server {
	s := &Server{
		mux:        http.NewServeMux(),
		store:      store,
		recognizer: recognizer,
		solver:     slv,
		gridSize:   gridSize,
		events:     NewEventHub(),
		uploadRL:   newRateLimiter(5, time.Minute), // 5 uploads/min per IP
		editRL:     newRateLimiter(60, time.Second), // 60 edits/sec per IP
		solveRL:    newRateLimiter(10, time.Second), // 10 solves/sec per IP
	}
	s.routes()
	return s
}

// Close releases the background work started by NewServer.
func (s *Server) Close() {
	s.uploadRL.close()
	s.editRL.close()
	s.solveRL.close()
}

func (s *Server) routes() {
	// Grid API
	s.mux.HandleFunc("POST /api/grids", s.handleCreateGrid)
	s.mux.HandleFunc("GET /api/grids", s.handleListGrids)
	s.mux.HandleFunc("GET /api/grids/{id}", s.handleGetGrid)
	s.mux.HandleFunc("DELETE /api/grids/{id}", s.handleDeleteGrid)
	s.mux.HandleFunc("POST /api/grids/{id}/cells", s.handleSetCell)
	s.mux.HandleFunc("POST /api/grids/{id}/solve", s.handleSolveGrid)
	s.mux.HandleFunc("GET /api/grids/{id}/events", s.handleGridEvents)

	// Stateless solve
	s.mux.HandleFunc("POST /api/solve", s.handleSolve)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /grid/{id}", s.handleGridPage)
	s.mux.Handle("GET /", fileServer)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Grid handlers ---

// POST /api/grids: multipart screenshot upload, or JSON {"letters": [[...]]}.
func (s *Server) handleCreateGrid(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.handleUploadGrid(w, r)
		return
	}

	if !s.editRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Letters [][]string `json:"letters"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "Field 'letters' required", http.StatusBadRequest)
		return
	}
	letters, err := cleanLetters(req.Letters)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	grid := s.store.SaveGrid(NewGrid(letters, SourceManual))
	writeJSON(w, http.StatusCreated, gridResponse(grid.View()))
}

func (s *Server) handleUploadGrid(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	if s.recognizer == nil {
		jsonError(w, "Image recognition not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, "Image too large (max 10 MB)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "Field 'image' required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		jsonError(w, "Accepted formats: JPEG or PNG", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "Could not read image", http.StatusInternalServerError)
		return
	}

	letters, err := s.recognizer.RecognizeGrid(r.Context(), imageData, mimeType, s.gridSize)
	if err != nil {
		slog.Error("Grid recognition failed", "err", err)
		jsonError(w, "Could not read the grid from the image", http.StatusInternalServerError)
		return
	}
	letters, err = cleanLetters(letters)
	if err != nil {
		slog.Error("Recognizer returned an unusable grid", "err", err)
		jsonError(w, "Could not read the grid from the image", http.StatusInternalServerError)
		return
	}

	grid := s.store.SaveGrid(NewGrid(letters, SourceUpload))
	view := grid.View()
	slog.Info("Grid recognized", "grid", view.ID, "blank_cells", view.BlankCells)
	writeJSON(w, http.StatusCreated, gridResponse(view))
}

// GET /api/grids: list all grids.
func (s *Server) handleListGrids(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListGrids())
}

// GET /api/grids/{id}: get a single grid.
func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grid not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse(grid.View()))
}

// DELETE /api/grids/{id}
func (s *Server) handleDeleteGrid(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.DeleteGrid(id) {
		jsonError(w, "Grid not found", http.StatusNotFound)
		return
	}
	s.events.Publish(id, GridDeletedEvent(id))
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/grids/{id}/cells: correct one tile.
func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	if !s.editRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grid not found", http.StatusNotFound)
		return
	}

	var req struct {
		Row   int    `json:"row"`
		Col   int    `json:"col"`
		Value string `json:"value"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	value, ok := cleanLetter(req.Value)
	if !ok {
		jsonError(w, "Invalid value: one letter A-Z or empty", http.StatusBadRequest)
		return
	}

	if !grid.SetCell(req.Row, req.Col, value) {
		jsonError(w, "Position out of bounds", http.StatusBadRequest)
		return
	}

	s.events.Publish(grid.ID, CellUpdateEvent(req.Row, req.Col, value))

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/grids/{id}/solve: solve the current letters of a stored grid.
func (s *Server) handleSolveGrid(w http.ResponseWriter, r *http.Request) {
	if !s.solveRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grid not found", http.StatusNotFound)
		return
	}

	var req struct {
		MinLength int `json:"min_length"`
	}
	// The body is optional.
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	view := grid.View()
	resp, ok := s.solve(w, r, view.Letters, req.MinLength)
	if !ok {
		return
	}
	resp.GridID = view.ID
	slog.Info("Grid solved", "grid", view.ID, "words", resp.Count, "total_score", resp.TotalScore, "duration", resp.Duration)

	s.events.Publish(view.ID, SolvedEvent(resp))
	writeJSON(w, http.StatusOK, resp)
}

// POST /api/solve: solve letters sent in the request.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if !s.solveRL.allow(r.RemoteAddr) {
		jsonError(w, "Too many requests, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Letters   [][]string `json:"letters"`
		MinLength int        `json:"min_length"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "Field 'letters' required", http.StatusBadRequest)
		return
	}

	resp, ok := s.solve(w, r, req.Letters, req.MinLength)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /api/grids/{id}/events: SSE stream.
func (s *Server) handleGridEvents(w http.ResponseWriter, r *http.Request) {
	grid := s.store.GetGrid(r.PathValue("id"))
	if grid == nil {
		jsonError(w, "Grid not found", http.StatusNotFound)
		return
	}

	s.events.Stream(w, r, grid.ID, GridStateEvent(grid.View()))
}

// --- Frontend page handlers ---

// GET /grid/{id}: serve the grid page.
func (s *Server) handleGridPage(w http.ResponseWriter, _ *http.Request) {
	data, _ := frontendFS.ReadFile("frontend/grid.html")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// --- Solving ---

type solvedWord struct {
	Word   string            `json:"word"`
	Score  int               `json:"score"`
	Path   []solver.Position `json:"path"`
	Coords []string          `json:"coords"`
	Arrows []string          `json:"arrows"`
}

type solveResponse struct {
	GridID     string        `json:"grid_id,omitempty"`
	MinLength  int           `json:"min_length"`
	Count      int           `json:"count"`
	TotalScore int           `json:"total_score"`
	Duration   time.Duration `json:"-"`
	Words      []solvedWord  `json:"words"`
}

// solve runs the solver and writes the error response itself when it fails.
func (s *Server) solve(w http.ResponseWriter, r *http.Request, letters [][]string, minLength int) (*solveResponse, bool) {
	if minLength < 0 {
		jsonError(w, "min_length must not be negative", http.StatusBadRequest)
		return nil, false
	}
	if err := checkGridSize(letters); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	for _, row := range letters {
		for _, l := range row {
			if _, ok := cleanLetter(l); !ok {
				jsonError(w, fmt.Sprintf("Invalid tile %q: one letter A-Z or empty", l), http.StatusBadRequest)
				return nil, false
			}
		}
	}

	slv := s.solver
	if minLength > 0 {
		slv = slv.With(solver.WithMinLength(minLength))
	}

	start := time.Now()
	results, err := slv.Solve(r.Context(), letters)
	switch {
	case errors.Is(err, solver.ErrInvalidGrid):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	case errors.Is(err, solver.ErrDictionaryUnavailable):
		jsonError(w, "Dictionary unavailable", http.StatusServiceUnavailable)
		return nil, false
	case err != nil:
		slog.Error("Solve failed", "err", err)
		jsonError(w, "Solve failed", http.StatusInternalServerError)
		return nil, false
	}

	resp := &solveResponse{
		MinLength:  slv.MinLength(),
		Count:      len(results),
		TotalScore: solver.TotalScore(results),
		Duration:   time.Since(start),
		Words:      make([]solvedWord, 0, len(results)),
	}
	for _, res := range results {
		coords, arrows := solver.EncodePath(res.Path)
		resp.Words = append(resp.Words, solvedWord{
			Word:   res.Word,
			Score:  res.Score,
			Path:   res.Path,
			Coords: coords,
			Arrows: arrows,
		})
	}
	return resp, true
}

// --- Helpers ---

type gridPayload struct {
	GridView
	Warning string `json:"warning,omitempty"`
}

// gridResponse adds a correction hint when some tiles are still blank.
func gridResponse(v GridView) gridPayload {
	p := gridPayload{GridView: v}
	if v.BlankCells > 0 {
		total := v.Rows * v.Cols
		p.Warning = fmt.Sprintf("Captured %d/%d letters. Please correct the grid manually.", total-v.BlankCells, total)
	}
	return p
}

// cleanLetters validates a grid's shape and tiles and returns uppercase letters.
func cleanLetters(letters [][]string) ([][]string, error) {
	if _, err := solver.NormalizeBoard(letters); err != nil {
		return nil, err
	}
	if err := checkGridSize(letters); err != nil {
		return nil, err
	}
	out := copyLetters(letters)
	for r, row := range out {
		for c, l := range row {
			v, ok := cleanLetter(l)
			if !ok {
				return nil, fmt.Errorf("invalid tile %q at %s", l, solver.CellLabel(solver.Position{Row: r, Col: c}))
			}
			out[r][c] = v
		}
	}
	return out, nil
}

// checkGridSize rejects grids with more than maxGridSize rows or columns.
func checkGridSize(letters [][]string) error {
	if len(letters) > maxGridSize {
		return fmt.Errorf("grid larger than %dx%d", maxGridSize, maxGridSize)
	}
	for _, row := range letters {
		if len(row) > maxGridSize {
			return fmt.Errorf("grid larger than %dx%d", maxGridSize, maxGridSize)
		}
	}
	return nil
}

// cleanLetter accepts one letter A-Z (any case), "Qu" for a q-tile, or blank.
func cleanLetter(s string) (string, bool) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "QU" {
		return "Q", true
	}
	if v == "" {
		return "", true
	}
	if len(v) != 1 || v < "A" || v > "Z" {
		return "", false
	}
	return v, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
