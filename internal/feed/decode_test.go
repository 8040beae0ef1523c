package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-feed-service/internal/domain"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
		wantErr  bool
	}{
		{"export_20240501.xml", FormatXML, false},
		{"feed.JSON", FormatJSON, false},
		{"properties.Xml", FormatXML, false},
		{"feed.csv", "", true},
		{"noextension", "", true},
	}

	for _, tt := range tests {
		got, err := DetectFormat(tt.filename)
		if tt.wantErr {
			assert.Error(t, err, tt.filename)
			continue
		}
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func TestDecode_XML(t *testing.T) {
	data := []byte(`<properties><property><id>1</id><price>100</price></property></properties>`)

	tree, err := Decode(data, FormatXML)
	require.NoError(t, err)
	assert.Contains(t, tree, "properties")
}

func TestDecode_XML_Malformed(t *testing.T) {
	data := []byte(`<properties><property><id>1</id></properties>`) // unclosed tag

	_, err := Decode(data, FormatXML)
	require.Error(t, err)

	var pe *domain.ParseError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "xml", pe.Format)
}

func TestDecode_JSON(t *testing.T) {
	data := []byte(`{"properties":[{"id":"1"}]}`)

	tree, err := Decode(data, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, tree, "properties")
}

func TestDecode_JSON_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"properties":[`), FormatJSON)

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
}

func TestDecode_JSON_NonObjectRoot(t *testing.T) {
	_, err := Decode([]byte(`[1,2,3]`), FormatJSON)

	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe))
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte(`x`), Format("yaml"))
	assert.Error(t, err)
}
