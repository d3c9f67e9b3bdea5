// Package api provides the REST API server for modalkit
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/james-see/modalkit/pkg/explorer"
	"github.com/james-see/modalkit/pkg/export"
	"github.com/james-see/modalkit/pkg/theory"
	"github.com/james-see/modalkit/pkg/throttle"
)

// @title modalkit API
// @version 1.0
// @description Derives the modes of a root note and plays or exports their chords
// @host localhost:8080
// @BasePath /api/v1

// Server serves the mode table, chord resolution, playback and MIDI export
type Server struct {
	explorer *explorer.Explorer
	exporter *export.Exporter
	router   *gin.Engine
	origins  []string
	logger   *zap.Logger
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithExporter replaces the default MIDI exporter
func WithExporter(x *export.Exporter) Option {
	return func(s *Server) { s.exporter = x }
}

// WithCORSOrigins restricts cross-origin requests; the default allows any origin
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// NewServer builds the router around x
func NewServer(x *explorer.Explorer, opts ...Option) *Server {
	s := &Server{
		explorer: x,
		exporter: export.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/modes", s.listModes)
		v1.GET("/roots", listRoots)
		v1.GET("/chord-types", listChordTypes)
		v1.GET("/chords/:symbol", s.getChord)
		v1.GET("/chords/:symbol/midi", s.getChordMIDI)
		v1.POST("/play", s.play)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.router = r
	return s
}

// Handler returns the router wrapped in the CORS policy
func (s *Server) Handler() http.Handler {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.router)
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// rootParam reads ?root=, defaulting to C
func rootParam(c *gin.Context) (theory.PitchClass, bool) {
	root, err := theory.ParsePitchClass(c.DefaultQuery("root", "C"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return root, true
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "modalkit",
	})
}

// ModesResponse is the mode table for one root
type ModesResponse struct {
	Root    string        `json:"root"`
	Kind    string        `json:"kind"`
	Headers []string      `json:"headers"`
	Rows    [][]string    `json:"rows"`
	Modes   []theory.Mode `json:"modes"`
}

// listModes godoc
// @Summary Mode table
// @Description Derives every mode of root and renders the degrees as notes, triads or sevenths
// @Tags theory
// @Produce json
// @Param root query string false "Root note (default: C)"
// @Param kind query string false "notes, triads or sevenths (default: notes)"
// @Success 200 {object} ModesResponse
// @Failure 400 {object} map[string]string
// @Router /modes [get]
func (s *Server) listModes(c *gin.Context) {
	root, ok := rootParam(c)
	if !ok {
		return
	}
	kind, err := theory.ParseDisplayKind(c.DefaultQuery("kind", string(theory.DisplayNotes)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	modes, err := s.explorer.Engine().DeriveAllModes(root)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ModesResponse{
		Root:    string(root),
		Kind:    string(kind),
		Headers: theory.TableHeaders,
		Rows:    theory.TableRows(modes, kind),
		Modes:   modes,
	})
}

// listRoots godoc
// @Summary Root choices
// @Description Returns the chromatic scale of the current root, the choices offered by the root selector
// @Tags theory
// @Produce json
// @Param root query string false "Current root (default: C)"
// @Success 200 {object} map[string][]string
// @Failure 400 {object} map[string]string
// @Router /roots [get]
func listRoots(c *gin.Context) {
	root, ok := rootParam(c)
	if !ok {
		return
	}
	scale, err := theory.BuildChromaticScale(root)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"root":  root,
		"roots": scale,
	})
}

// listChordTypes godoc
// @Summary Chord types
// @Description Lists the chord structures and the suffixes that spell them
// @Tags theory
// @Produce json
// @Success 200 {object} map[string][]map[string]interface{}
// @Router /chord-types [get]
func listChordTypes(c *gin.Context) {
	types := make([]gin.H, 0, len(theory.ChordTypes))
	for _, ct := range theory.ChordTypes {
		intervals := make([]string, len(ct.Intervals))
		for i, iv := range ct.Intervals {
			intervals[i] = iv.String()
		}
		types = append(types, gin.H{
			"name":      ct.Name,
			"symbols":   ct.Symbols,
			"intervals": intervals,
		})
	}
	c.JSON(http.StatusOK, gin.H{"chord_types": types})
}

// ChordResponse is a resolved chord placed against a root
type ChordResponse struct {
	Symbol       string    `json:"symbol"`
	Type         string    `json:"type"`
	Tonic        string    `json:"tonic"`
	Intervals    []string  `json:"intervals"`
	PitchClasses []string  `json:"pitch_classes"`
	OctaveOffset int       `json:"octave_offset"`
	Octave       int       `json:"octave"`
	Notes        []string  `json:"notes"`
	Frequencies  []float64 `json:"frequencies"`
}

func newChordResponse(p explorer.Plan) ChordResponse {
	pcs := p.Chord.PitchClasses()
	names := make([]string, len(pcs))
	for i, pc := range pcs {
		names[i] = string(pc)
	}
	freqs := make([]float64, 0, len(p.Notes))
	for _, n := range p.Notes {
		if f, err := n.Frequency(); err == nil {
			freqs = append(freqs, f)
		}
	}
	return ChordResponse{
		Symbol:       p.Chord.Symbol,
		Type:         p.Chord.Type,
		Tonic:        string(p.Chord.Tonic),
		Intervals:    p.Chord.IntervalNames(),
		PitchClasses: names,
		OctaveOffset: p.Offset,
		Octave:       p.Octave,
		Notes:        p.NoteNames(),
		Frequencies:  freqs,
	}
}

func (s *Server) plan(c *gin.Context) (explorer.Plan, bool) {
	root, ok := rootParam(c)
	if !ok {
		return explorer.Plan{}, false
	}
	p, err := s.explorer.Plan(root, c.Param("symbol"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return explorer.Plan{}, false
	}
	return p, true
}

// getChord godoc
// @Summary Resolve a chord
// @Description Resolves a chord symbol or note name and places it in octave relative to root
// @Tags theory
// @Produce json
// @Param symbol path string true "Chord symbol, e.g. Dm7 (URL-encode #)"
// @Param root query string false "Scale root (default: C)"
// @Success 200 {object} ChordResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /chords/{symbol} [get]
func (s *Server) getChord(c *gin.Context) {
	p, ok := s.plan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newChordResponse(p))
}

// getChordMIDI godoc
// @Summary Export a chord as MIDI
// @Description Returns a one-chord Standard MIDI File
// @Tags export
// @Produce audio/midi
// @Param symbol path string true "Chord symbol"
// @Param root query string false "Scale root (default: C)"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /chords/{symbol}/midi [get]
func (s *Server) getChordMIDI(c *gin.Context) {
	p, ok := s.plan(c)
	if !ok {
		return
	}
	data, err := s.exporter.Generate(p.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	name := strings.NewReplacer("#", "s", "/", "_").Replace(p.Chord.Symbol) + ".mid"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, "audio/midi", data)
}

// PlayRequest is a click on a table cell
type PlayRequest struct {
	Root string `json:"root"`
	Cell string `json:"cell" binding:"required"`
}

// PlayResponse describes an accepted trigger
type PlayResponse struct {
	ID         string   `json:"id"`
	Chord      string   `json:"chord"`
	Notes      []string `json:"notes"`
	Voices     int      `json:"voices"`
	DurationMs int64    `json:"duration_ms"`
}

// play godoc
// @Summary Play a cell
// @Description Resolves the cell text and plays it. Mode names, unknown text and clicks inside the rate limit window are ignored.
// @Tags audio
// @Accept json
// @Produce json
// @Param request body PlayRequest true "Clicked cell"
// @Success 202 {object} PlayResponse
// @Success 204 "ignored"
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /play [post]
func (s *Server) play(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Root == "" {
		req.Root = "C"
	}
	root, err := theory.ParsePitchClass(req.Root)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := s.explorer.Click(root, req.Cell)
	switch {
	case errors.Is(err, theory.ErrUnresolvedChord), errors.Is(err, throttle.ErrRateLimited):
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		s.logger.Error("play failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, PlayResponse{
		ID:         t.ID.String(),
		Chord:      t.Plan.Chord.Symbol,
		Notes:      t.Plan.NoteNames(),
		Voices:     t.Voices,
		DurationMs: t.Duration.Milliseconds(),
	})
}
