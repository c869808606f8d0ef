package api

import (
	"github.com/ssargent/m64kit/pkg/catalog"
	"github.com/ssargent/m64kit/pkg/m64"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// DecodeErrorDetail describes why a movie failed to decode
type DecodeErrorDetail struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

// DecodeResponse is returned by POST /decode
type DecodeResponse struct {
	Summary m64.Summary `json:"summary"`
	Header  *m64.Header `json:"header,omitempty"`
	Inputs  []m64.Input `json:"inputs,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port          int
	Bind          string
	APIKey        string
	MaxUploadSize int64
}

// MovieCatalog defines the catalog operations the handlers need
type MovieCatalog interface {
	Codec() *m64.Codec
	Add(name string, data []byte) (*catalog.Entry, error)
	Get(id string) (*catalog.Entry, error)
	Raw(id string) ([]byte, error)
	Inputs(id string, offset, limit int) (*catalog.InputPage, error)
	List() ([]*catalog.Entry, error)
	Delete(id string) error
}
