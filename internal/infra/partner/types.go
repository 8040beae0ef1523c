package partner

import (
	"time"

	"property-feed-service/internal/domain"
)

// propertyResponse is the partner API's JSON shape for a single listing.
type propertyResponse struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Operation string `json:"operation"`
	Price     int    `json:"price"`
	Currency  string `json:"currency"`

	Address struct {
		Street     string  `json:"street"`
		City       string  `json:"city"`
		Province   string  `json:"province"`
		PostalCode string  `json:"postal_code"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
	} `json:"address"`

	Rooms     int    `json:"rooms"`
	Bathrooms int    `json:"bathrooms"`
	Area      int    `json:"area"`
	Floor     string `json:"floor"`

	Descriptions []struct {
		Language string `json:"language"`
		Text     string `json:"text"`
	} `json:"descriptions"`

	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Tag    string `json:"tag"`
	} `json:"images"`

	Status      string `json:"status"`
	PublishedAt string `json:"published_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ToDomain converts the partner payload to a canonical Property.
func (r *propertyResponse) ToDomain() *domain.Property {
	kind := domain.OperationSale
	if r.Operation == "rent" {
		kind = domain.OperationRent
	}

	currency := r.Currency
	if currency == "" {
		currency = "EUR"
	}

	status := domain.StatusActive
	if r.Status == "inactive" {
		status = domain.StatusInactive
	}

	price := r.Price
	if price < 0 {
		price = 0
	}
	area := r.Area
	if area < 0 {
		area = 0
	}

	prop := &domain.Property{
		ID:          r.ID,
		ExternalRef: r.Reference,
		Operation: domain.Operation{
			Kind:     kind,
			Price:    price,
			Currency: currency,
		},
		Address: domain.Address{
			Street:     r.Address.Street,
			City:       r.Address.City,
			Province:   r.Address.Province,
			PostalCode: r.Address.PostalCode,
			Latitude:   r.Address.Latitude,
			Longitude:  r.Address.Longitude,
		},
		Features: domain.Features{
			Rooms:     r.Rooms,
			Bathrooms: r.Bathrooms,
			AreaM2:    area,
			Floor:     r.Floor,
		},
		Status: status,
		Source: domain.SourcePartner,
	}

	for _, d := range r.Descriptions {
		prop.Descriptions = append(prop.Descriptions, domain.Description{
			Language: d.Language,
			Text:     d.Text,
		})
	}
	for i, img := range r.Images {
		prop.Images = append(prop.Images, domain.Image{
			URL:      img.URL,
			Width:    img.Width,
			Height:   img.Height,
			Tag:      img.Tag,
			Position: i,
		})
	}

	if t, err := time.Parse(time.RFC3339, r.PublishedAt); err == nil {
		prop.PublishedAt = t
	}
	if t, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
		prop.UpdatedAt = t
	}

	return prop
}
