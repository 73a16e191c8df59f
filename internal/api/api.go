// Package api defines the wire types and routes of the tilepad HTTP API.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Defines values for CreateAtlasParamsFormat.
const (
	Png  CreateAtlasParamsFormat = "png"
	Tiff CreateAtlasParamsFormat = "tiff"
)

// Error codes returned in ErrorResponse.Error.
const (
	INVALIDPARAMETER = "INVALID_PARAMETER"
	INVALIDIMAGE     = "INVALID_IMAGE"
	INVALIDTILESIZE  = "INVALID_TILE_SIZE"
	INVALIDGEOMETRY  = "INVALID_GEOMETRY"
	PAYLOADTOOLARGE  = "PAYLOAD_TOO_LARGE"
	INTERNALERROR    = "INTERNAL_ERROR"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	Details   *map[string]interface{} `json:"details,omitempty"`
	RequestId *string                 `json:"request_id,omitempty"`
}

// CreateAtlasParamsFormat defines parameters for CreateAtlas.
type CreateAtlasParamsFormat string

// CreateAtlasParams defines parameters for CreateAtlas.
type CreateAtlasParams struct {
	// TileSize is the edge length of a source tile in pixels. Defaults to 32.
	TileSize *int `form:"tile_size,omitempty" json:"tile_size,omitempty"`

	// Format selects the encoding of the returned atlas. Defaults to png.
	Format *CreateAtlasParamsFormat `form:"format,omitempty" json:"format,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Report service health
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// Build a padded atlas from the tile sheet in the request body
	// (POST /atlas)
	CreateAtlas(w http.ResponseWriter, r *http.Request, params CreateAtlasParams)
}

// InvalidParamFormatError is passed to the error handler when a query
// parameter cannot be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// GetHealth operation middleware
func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

// CreateAtlas operation middleware
func (siw *ServerInterfaceWrapper) CreateAtlas(w http.ResponseWriter, r *http.Request) {
	var err error

	var params CreateAtlasParams

	err = runtime.BindQueryParameter("form", true, false, "tile_size", r.URL.Query(), &params.TileSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tile_size", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &params.Format)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "format", Err: err})
		return
	}

	siw.Handler.CreateAtlas(w, r, params)
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// Handler creates http.Handler with routing matching the API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:          si,
		ErrorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Get(options.BaseURL+"/health", wrapper.GetHealth)
	r.Post(options.BaseURL+"/atlas", wrapper.CreateAtlas)

	return r
}
