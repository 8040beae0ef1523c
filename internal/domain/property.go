// Package domain contains the core business entities and ports.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// OperationKind is the kind of commercial operation a listing is offered under.
type OperationKind string

const (
	OperationSale OperationKind = "sale"
	OperationRent OperationKind = "rent"
)

// Status marks whether a listing is currently published by the source.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Source records where a Property record came from.
type Source string

const (
	SourceFeed     Source = "feed"     // scheduled feed ingestion
	SourcePartner  Source = "partner"  // on-demand partner API lookup
	SourceFallback Source = "fallback" // placeholder when every upstream failed
)

// Operation holds the commercial terms of a listing.
// Price is an integer amount in the smallest natural unit of the feed
// (whole euros for the sources we ingest) and is never negative.
type Operation struct {
	Kind     OperationKind `json:"kind"`
	Price    int           `json:"price"`
	Currency string        `json:"currency"`
}

// Address holds the listing location. Latitude/Longitude are optional and
// zero-valued when the feed carries no geocoordinates.
type Address struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// Features holds the physical characteristics of a listing.
// Counts and area are never negative; AreaM2 is constructed area in m².
type Features struct {
	Rooms     int    `json:"rooms"`
	Bathrooms int    `json:"bathrooms"`
	AreaM2    int    `json:"area_m2"`
	Floor     string `json:"floor,omitempty"`
}

// Description is one language-tagged text block. Order is preserved from
// the source feed.
type Description struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

// Image is one listing picture. Order (Position) is preserved from the
// source feed; dimensions and byte size are optional.
type Image struct {
	URL       string `json:"url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Position  int    `json:"position"`
	Tag       string `json:"tag,omitempty"`
}

// Property is the canonical, schema-stable listing record produced by feed
// normalization, independent of the raw wire shape of any particular feed
// revision. Within one cached snapshot every Property has a unique ID.
// Empty Descriptions/Images slices are valid (absence, not error).
type Property struct {
	ID           string        `json:"id"`
	ExternalRef  string        `json:"external_ref,omitempty"`
	Operation    Operation     `json:"operation"`
	Address      Address       `json:"address"`
	Features     Features      `json:"features"`
	Descriptions []Description `json:"descriptions,omitempty"`
	Images       []Image       `json:"images,omitempty"`
	Status       Status        `json:"status"`
	Source       Source        `json:"source"`
	PublishedAt  time.Time     `json:"published_at,omitempty"`
	UpdatedAt    time.Time     `json:"updated_at,omitempty"`
}

// IsActive reports whether the listing is currently published.
func (p *Property) IsActive() bool {
	return p.Status == StatusActive
}

// IsFallback reports whether this record is a placeholder produced because
// every upstream source failed. Fallback records must be distinguishable
// from genuine data.
func (p *Property) IsFallback() bool {
	return p.Source == SourceFallback
}

// HasGeo reports whether the listing carries geocoordinates.
func (p *Property) HasGeo() bool {
	return p.Address.Latitude != 0 || p.Address.Longitude != 0
}

// NewFallbackProperty returns the clearly-flagged placeholder served when
// the cache is cold and every upstream source fails. Always showing
// something is a product decision; the Source tag keeps it distinguishable
// from genuine data.
func NewFallbackProperty(id string) *Property {
	return &Property{
		ID:     id,
		Status: StatusInactive,
		Source: SourceFallback,
		Operation: Operation{
			Kind:     OperationSale,
			Currency: "EUR",
		},
		Address: Address{
			City: "Unknown",
		},
		Descriptions: []Description{
			{Language: "en", Text: "Listing details are temporarily unavailable."},
		},
	}
}
