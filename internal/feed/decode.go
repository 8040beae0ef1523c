// Package feed decodes raw feed files into a generic tree and normalizes
// the tree into canonical Property records.
//
// The upstream feed has shipped at least three different top-level shapes
// and two wire encodings over its lifetime, so everything here is kept
// data-driven: decoding produces a plain map tree, and normalization walks
// it with ordered lists of candidate extraction paths (see rules.go)
// instead of typed wire structs.
package feed

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clbanning/mxj/v2"

	"property-feed-service/internal/domain"
)

// Format is a supported wire encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// DetectFormat infers the wire format from the feed filename extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml":
		return FormatXML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported feed file %q", filename)
	}
}

// Decode parses data in the given format into a generic tree.
// Malformed input fails with *domain.ParseError.
func Decode(data []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatXML:
		m, err := mxj.NewMapXml(data)
		if err != nil {
			return nil, &domain.ParseError{Format: string(format), Err: err}
		}
		return map[string]any(m), nil

	case FormatJSON:
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, &domain.ParseError{Format: string(format), Err: err}
		}
		m, ok := tree.(map[string]any)
		if !ok {
			return nil, &domain.ParseError{
				Format: string(format),
				Err:    fmt.Errorf("expected object at feed root, got %T", tree),
			}
		}
		return m, nil

	default:
		return nil, &domain.ParseError{
			Format: string(format),
			Err:    fmt.Errorf("unknown format"),
		}
	}
}
