package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kiesman99/tilepad/internal/api"
	"github.com/kiesman99/tilepad/internal/atlas"
	"github.com/kiesman99/tilepad/pkg/tile"
)

const (
	// DefaultMaxUpload bounds the size of an uploaded tile sheet in bytes
	DefaultMaxUpload = 32 << 20

	// DefaultMaxPixels bounds the decoded size of an uploaded tile sheet
	DefaultMaxPixels = 16 << 20
)

// Server implements the ServerInterface from the api package
type Server struct {
	startTime time.Time
	version   string
	builder   *atlas.Builder
	maxUpload int64
	maxPixels int64
}

// NewServer creates a new server instance. A maxUpload or maxPixels of zero
// or less selects DefaultMaxUpload or DefaultMaxPixels.
func NewServer(version string, builder *atlas.Builder, maxUpload, maxPixels int64) *Server {
	if builder == nil {
		builder = atlas.New()
	}
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Server{
		startTime: time.Now(),
		version:   version,
		builder:   builder,
		maxUpload: maxUpload,
		maxPixels: maxPixels,
	}
}

// NewRouter mounts the API of s under /api/v1 with the standard middleware stack
func NewRouter(s *Server, timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	r.Route("/api/v1", func(r chi.Router) {
		api.HandlerWithOptions(s, api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: s.handleParamError,
		})
	})

	// Health without the /api/v1 prefix
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/v1/health", http.StatusMovedPermanently)
	})

	return r
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// CreateAtlas builds a padded atlas from the image in the request body
func (s *Server) CreateAtlas(w http.ResponseWriter, r *http.Request, params api.CreateAtlasParams) {
	requestID := requestIDFrom(r)

	size := tile.DefaultSize
	if params.TileSize != nil {
		size = *params.TileSize
	}

	format := tile.FormatPNG
	if params.Format != nil {
		f, err := tile.ParseFormat(string(*params.Format))
		if err != nil {
			s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDPARAMETER,
				fmt.Sprintf("format must be %q or %q", api.Png, api.Tiff), &requestID, nil)
			return
		}
		format = f
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, api.PAYLOADTOOLARGE,
				fmt.Sprintf("image exceeds %d bytes", s.maxUpload), &requestID, nil)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDIMAGE,
			"Could not read request body", &requestID, nil)
		return
	}

	src, _, err := tile.DecodeImageLimit(data, s.maxPixels)
	if errors.Is(err, tile.ErrImageTooLarge) {
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, api.PAYLOADTOOLARGE,
			err.Error(), &requestID, map[string]interface{}{"max_pixels": s.maxPixels})
		return
	}
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDIMAGE,
			err.Error(), &requestID, nil)
		return
	}

	result, err := s.builder.Build(r.Context(), src, size)
	if err != nil {
		s.handleBuildError(w, err, &requestID, map[string]interface{}{
			"tile_size": size,
			"width":     src.Bounds().Dx(),
			"height":    src.Bounds().Dy(),
		})
		return
	}

	var buf bytes.Buffer
	if err := tile.Encode(&buf, result.Canvas, format); err != nil {
		log.Printf("Error encoding atlas: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", &requestID, nil)
		return
	}

	w.Header().Set("Content-Type", tile.ContentType(format))
	w.Header().Set("X-Request-ID", requestID)
	w.Header().Set("X-Atlas-Width", strconv.Itoa(result.Geometry.CanvasWidth))
	w.Header().Set("X-Atlas-Height", strconv.Itoa(result.Geometry.CanvasHeight))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// handleBuildError maps builder failures onto API error responses
func (s *Server) handleBuildError(w http.ResponseWriter, err error, requestID *string, details map[string]interface{}) {
	switch {
	case errors.Is(err, tile.ErrInvalidTileSize):
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDTILESIZE,
			err.Error(), requestID, details)
	case errors.Is(err, tile.ErrInvalidGeometry):
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDGEOMETRY,
			err.Error(), requestID, details)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		s.writeErrorResponse(w, http.StatusServiceUnavailable, api.INTERNALERROR,
			"Request cancelled before the atlas was built", requestID, nil)
	default:
		log.Printf("Error building atlas: %v", err)
		s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", requestID, nil)
	}
}

func (s *Server) handleParamError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := requestIDFrom(r)
	s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDPARAMETER, err.Error(), &requestID, nil)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// requestIDFrom prefers the ID assigned by the RequestID middleware
func requestIDFrom(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
