package dto

import (
	"time"

	"property-feed-service/internal/app/service"
	"property-feed-service/internal/domain"
)

// PropertyResponse represents a single listing in the response.
type PropertyResponse struct {
	ID          string `json:"id"`
	ExternalRef string `json:"external_ref,omitempty"`

	Operation string `json:"operation"`
	Price     int    `json:"price"`
	Currency  string `json:"currency,omitempty"`

	Address      AddressResponse       `json:"address"`
	Features     FeaturesResponse      `json:"features"`
	Descriptions []DescriptionResponse `json:"descriptions,omitempty"`
	Images       []ImageResponse       `json:"images,omitempty"`

	Status string `json:"status"`
	Source string `json:"source"`

	PublishedAt string `json:"published_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// AddressResponse holds the listing location.
type AddressResponse struct {
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province,omitempty"`
	PostalCode string  `json:"postal_code,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// FeaturesResponse holds the physical characteristics of a listing.
type FeaturesResponse struct {
	Rooms     int    `json:"rooms"`
	Bathrooms int    `json:"bathrooms"`
	AreaM2    int    `json:"area_m2"`
	Floor     string `json:"floor,omitempty"`
}

// DescriptionResponse is one language-tagged text block.
type DescriptionResponse struct {
	Language string `json:"language,omitempty"`
	Text     string `json:"text"`
}

// ImageResponse is one listing picture.
type ImageResponse struct {
	URL       string `json:"url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	SizeBytes int    `json:"size_bytes,omitempty"`
	Position  int    `json:"position"`
	Tag       string `json:"tag,omitempty"`
}

// FromDomainProperty converts domain.Property to PropertyResponse.
func FromDomainProperty(p *domain.Property) PropertyResponse {
	resp := PropertyResponse{
		ID:          p.ID,
		ExternalRef: p.ExternalRef,
		Operation:   string(p.Operation.Kind),
		Price:       p.Operation.Price,
		Currency:    p.Operation.Currency,
		Address: AddressResponse{
			Street:     p.Address.Street,
			City:       p.Address.City,
			Province:   p.Address.Province,
			PostalCode: p.Address.PostalCode,
			Latitude:   p.Address.Latitude,
			Longitude:  p.Address.Longitude,
		},
		Features: FeaturesResponse{
			Rooms:     p.Features.Rooms,
			Bathrooms: p.Features.Bathrooms,
			AreaM2:    p.Features.AreaM2,
			Floor:     p.Features.Floor,
		},
		Status: string(p.Status),
		Source: string(p.Source),
	}

	for _, d := range p.Descriptions {
		resp.Descriptions = append(resp.Descriptions, DescriptionResponse{
			Language: d.Language,
			Text:     d.Text,
		})
	}
	resp.Images = FromDomainImages(p.Images)

	if !p.PublishedAt.IsZero() {
		resp.PublishedAt = p.PublishedAt.Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}

	return resp
}

// FromDomainImages converts a slice of domain.Image to responses.
func FromDomainImages(images []domain.Image) []ImageResponse {
	out := make([]ImageResponse, len(images))
	for i, img := range images {
		out[i] = ImageResponse{
			URL:       img.URL,
			Width:     img.Width,
			Height:    img.Height,
			SizeBytes: img.SizeBytes,
			Position:  img.Position,
			Tag:       img.Tag,
		}
	}

	return out
}

// PropertyListResponse represents the listing collection response.
type PropertyListResponse struct {
	Properties []PropertyResponse `json:"properties"`
	Total      int                `json:"total"`
}

// FromDomainProperties converts a property slice to PropertyListResponse.
func FromDomainProperties(properties []domain.Property) PropertyListResponse {
	resp := PropertyListResponse{
		Properties: make([]PropertyResponse, len(properties)),
		Total:      len(properties),
	}
	for i := range properties {
		resp.Properties[i] = FromDomainProperty(&properties[i])
	}

	return resp
}

// RefreshResponse represents the result of a manually triggered refresh.
type RefreshResponse struct {
	Feed     string `json:"feed"`
	Count    int    `json:"count"`
	Duration string `json:"duration"`
}

// FromRefreshResult converts service.RefreshResult to RefreshResponse.
func FromRefreshResult(r *service.RefreshResult) RefreshResponse {
	return RefreshResponse{
		Feed:     r.Feed,
		Count:    r.Count,
		Duration: r.Duration.String(),
	}
}

// ScheduleStatusResponse represents the scheduler state.
type ScheduleStatusResponse struct {
	Running    bool   `json:"running"`
	Expression string `json:"expression"`
	Timezone   string `json:"timezone"`
	LastRun    string `json:"last_run,omitempty"`
	Outcome    string `json:"outcome"`
	LastCount  int    `json:"last_count"`
	LastError  string `json:"last_error,omitempty"`
}

// FromScheduleState converts domain.ScheduleState to ScheduleStatusResponse.
func FromScheduleState(s domain.ScheduleState) ScheduleStatusResponse {
	resp := ScheduleStatusResponse{
		Running:    s.Running,
		Expression: s.Expression,
		Timezone:   s.Timezone,
		Outcome:    string(s.Outcome),
		LastCount:  s.LastCount,
		LastError:  s.LastError,
	}
	if !s.LastRun.IsZero() {
		resp.LastRun = s.LastRun.Format(time.RFC3339)
	}

	return resp
}

// FlushResponse represents the result of a cache namespace flush.
type FlushResponse struct {
	Namespace string `json:"namespace"`
	Flushed   bool   `json:"flushed"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}
