package feed

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

const sampleXMLFeed = `<?xml version="1.0" encoding="UTF-8"?>
<properties>
  <property>
    <id>p-100</id>
    <external-reference>REF-100</external-reference>
    <operation>sale</operation>
    <prices>
      <by-operation>
        <sale>
          <price>250.000 EUR</price>
          <currency>EUR</currency>
        </sale>
      </by-operation>
    </prices>
    <address>
      <street>Calle Mayor 1</street>
      <city>Madrid</city>
      <province>Madrid</province>
      <postal-code>28013</postal-code>
      <coordinates>
        <latitude>40.4168</latitude>
        <longitude>-3.7038</longitude>
      </coordinates>
    </address>
    <property>
      <housing>
        <room-number>3</room-number>
        <bathroom-number>2</bathroom-number>
        <constructed-area>95 m2</constructed-area>
        <floor>2</floor>
      </housing>
    </property>
    <descriptions>
      <description language="en">Bright flat near the centre.</description>
      <description language="es">Piso luminoso en el centro.</description>
    </descriptions>
    <multimedias>
      <pictures>
        <picture position="0"><path>https://img.example.com/p100-1.jpg</path></picture>
        <picture position="1" tag="kitchen"><path>https://img.example.com/p100-2.jpg</path></picture>
      </pictures>
    </multimedias>
    <status>active</status>
    <published-at>2024-04-01T09:00:00Z</published-at>
    <last-modified>2024-05-01T10:30:00Z</last-modified>
  </property>
  <property>
    <id>p-101</id>
    <operation>rent</operation>
    <prices>
      <by-operation>
        <rent>
          <price>1.200</price>
        </rent>
      </by-operation>
    </prices>
    <address>
      <street>Gran Via 10</street>
      <city>Madrid</city>
    </address>
    <property>
      <housing>
        <bedroom-number>2</bedroom-number>
      </housing>
    </property>
    <status>0</status>
  </property>
</properties>`

func newTestParser() *Parser {
	return NewParser(zap.NewNop())
}

func TestNormalize_XMLFeed(t *testing.T) {
	p := newTestParser()

	tree, err := p.Decode([]byte(sampleXMLFeed), FormatXML)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 2)

	first := props[0]
	assert.Equal(t, "p-100", first.ID)
	assert.Equal(t, "REF-100", first.ExternalRef)
	assert.Equal(t, domain.OperationSale, first.Operation.Kind)
	assert.Equal(t, 250000, first.Operation.Price) // separators stripped
	assert.Equal(t, "EUR", first.Operation.Currency)
	assert.Equal(t, "Calle Mayor 1", first.Address.Street)
	assert.Equal(t, "Madrid", first.Address.City)
	assert.Equal(t, "28013", first.Address.PostalCode)
	assert.InDelta(t, 40.4168, first.Address.Latitude, 0.0001)
	assert.InDelta(t, -3.7038, first.Address.Longitude, 0.0001)
	assert.Equal(t, 3, first.Features.Rooms)
	assert.Equal(t, 2, first.Features.Bathrooms)
	assert.Equal(t, 95, first.Features.AreaM2)
	assert.Equal(t, domain.StatusActive, first.Status)
	assert.Equal(t, domain.SourceFeed, first.Source)
	assert.False(t, first.PublishedAt.IsZero())
	assert.False(t, first.UpdatedAt.IsZero())

	require.Len(t, first.Descriptions, 2)
	assert.Equal(t, "en", first.Descriptions[0].Language)
	assert.Equal(t, "Bright flat near the centre.", first.Descriptions[0].Text)

	require.Len(t, first.Images, 2)
	assert.Equal(t, "https://img.example.com/p100-1.jpg", first.Images[0].URL)
	assert.Equal(t, 0, first.Images[0].Position)
	assert.Equal(t, "kitchen", first.Images[1].Tag)

	second := props[1]
	assert.Equal(t, domain.OperationRent, second.Operation.Kind)
	assert.Equal(t, 1200, second.Operation.Price)
	assert.Equal(t, 2, second.Features.Rooms) // bedroom-number fallback
	assert.Equal(t, domain.StatusInactive, second.Status)
	assert.Empty(t, second.Images) // absence, not error
}

func TestNormalize_JSONFeed(t *testing.T) {
	data := []byte(`{
	  "data": {
	    "properties": [
	      {
	        "id": "j-1",
	        "operation": "sale",
	        "price": 175000,
	        "address": {"street": "Main St 5", "city": "Valencia"},
	        "rooms": 4
	      },
	      {
	        "id": "j-2",
	        "operation": "rent",
	        "price": "900",
	        "address": {"city": "Valencia"}
	      }
	    ]
	  }
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 2)
	assert.Equal(t, 175000, props[0].Operation.Price)
	assert.Equal(t, 4, props[0].Features.Rooms)
	assert.Equal(t, 900, props[1].Operation.Price)
}

func TestNormalize_MalformedRecordDropped(t *testing.T) {
	data := []byte(`{
	  "properties": [
	    {"id": "ok-1", "price": 100},
	    "this is not a record",
	    {"id": "ok-2", "price": 200}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 2) // one fewer than record count, no panic
	assert.Equal(t, "ok-1", props[0].ID)
	assert.Equal(t, "ok-2", props[1].ID)
}

func TestNormalize_MissingPriceDefaultsToZero(t *testing.T) {
	data := []byte(`{
	  "properties": [
	    {"id": "a", "price": 100},
	    {"id": "b", "price": 200},
	    {"id": "c", "price": 300},
	    {"id": "d", "address": {"city": "Sevilla"}}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 4)
	assert.Equal(t, 0, props[3].Operation.Price)
	assert.Equal(t, "Sevilla", props[3].Address.City)
}

func TestNormalize_MissingCityUsesPlaceholder(t *testing.T) {
	data := []byte(`{"properties": [{"id": "a"}]}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 1)
	assert.Equal(t, defaultCity, props[0].Address.City)
}

func TestNormalize_Idempotent(t *testing.T) {
	p := newTestParser()
	tree, err := p.Decode([]byte(sampleXMLFeed), FormatXML)
	require.NoError(t, err)

	first := p.Normalize(tree)
	second := p.Normalize(tree)

	assert.True(t, reflect.DeepEqual(first, second), "normalize must be idempotent")
}

func TestNormalize_UniqueIDs(t *testing.T) {
	data := []byte(`{
	  "properties": [
	    {"id": "dup", "price": 1},
	    {"id": "dup", "price": 2},
	    {"id": "dup", "price": 3}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 3)

	seen := map[string]bool{}
	for _, prop := range props {
		assert.False(t, seen[prop.ID], "duplicate id %q", prop.ID)
		seen[prop.ID] = true
	}
}

func TestNormalize_SynthesizedIDIsStable(t *testing.T) {
	data := []byte(`{
	  "properties": [
	    {"address": {"street": "Anon St 1", "city": "Bilbao"}, "price": 500}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	a := p.Normalize(tree)
	b := p.Normalize(tree)

	require.Len(t, a, 1)
	assert.NotEmpty(t, a[0].ID)
	assert.Contains(t, a[0].ID, "gen-")
	assert.Equal(t, a[0].ID, b[0].ID)
}

func TestNormalize_NonNegativeInvariant(t *testing.T) {
	data := []byte(`{
	  "properties": [
	    {"id": "neg", "price": -500, "surface": -20}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 1)
	assert.GreaterOrEqual(t, props[0].Operation.Price, 0)
	assert.GreaterOrEqual(t, props[0].Features.AreaM2, 0)
}

func TestNormalize_NoKnownContainer(t *testing.T) {
	p := newTestParser()

	props := p.Normalize(map[string]any{"unexpected": []any{}})
	assert.Empty(t, props)
}

func TestNormalize_SingleRecordFeed(t *testing.T) {
	// A one-record XML feed decodes the record as a map, not a list.
	data := []byte(`<properties><property><id>solo</id><price>42</price></property></properties>`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatXML)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 1)
	assert.Equal(t, "solo", props[0].ID)
	assert.Equal(t, 42, props[0].Operation.Price)
}

func TestNormalize_UnitSuffixedNumerics(t *testing.T) {
	// Feeds ship numbers with units and currency noise; the suffix must
	// end the number, not be folded into it.
	data := []byte(`{
	  "properties": [
	    {"id": "u-1", "price": "250.000 EUR", "surface": "95 m2", "rooms": "3 hab."}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 1)
	assert.Equal(t, 250000, props[0].Operation.Price)
	assert.Equal(t, 95, props[0].Features.AreaM2)
	assert.Equal(t, 3, props[0].Features.Rooms)
}

func TestParseLeadingInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"95 m2", 95},
		{"95m2", 95},
		{"250.000 EUR", 250000},
		{"1.234.567", 1234567},
		{"1,450", 1450},
		{"95.5", 95}, // decimal remainder truncated
		{"€ 1.200", 1200},
		{"m2", 0},
		{"", 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLeadingInt(tc.in), "input %q", tc.in)
	}
}

func TestNormalize_DuplicateIDAvoidsNaturalSuffix(t *testing.T) {
	// A feed that already contains "dup-2" must not receive a second
	// "dup-2" from deduplication.
	data := []byte(`{
	  "properties": [
	    {"id": "dup", "price": 1},
	    {"id": "dup-2", "price": 2},
	    {"id": "dup", "price": 3}
	  ]
	}`)

	p := newTestParser()
	tree, err := p.Decode(data, FormatJSON)
	require.NoError(t, err)

	props := p.Normalize(tree)
	require.Len(t, props, 3)

	seen := map[string]bool{}
	for _, prop := range props {
		assert.False(t, seen[prop.ID], "duplicate id %q", prop.ID)
		seen[prop.ID] = true
	}
	assert.True(t, seen["dup"])
	assert.True(t, seen["dup-2"])
}
