package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/paycalc/internal/domain"
)

// RequestParser reads calculation requests from YAML or JSON
type RequestParser struct{}

// NewRequestParser creates a new request parser
func NewRequestParser() *RequestParser {
	return &RequestParser{}
}

// LoadFromFile loads a calculation request from a YAML or JSON file.
// "-" reads standard input.
func (rp *RequestParser) LoadFromFile(filename string) (*domain.CalculateRequest, error) {
	var (
		data []byte
		err  error
	)
	if filename == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return rp.Parse(data)
}

// Parse decodes, normalizes and validates a request document
func (rp *RequestParser) Parse(data []byte) (*domain.CalculateRequest, error) {
	var req domain.CalculateRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: failed to parse request: %v", domain.ErrInvalidInput, err)
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("request validation failed: %w", err)
	}
	return &req, nil
}
