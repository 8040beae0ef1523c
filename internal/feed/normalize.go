package feed

import (
	"fmt"
	"hash/fnv"
	"strings"

	"go.uber.org/zap"

	"property-feed-service/internal/domain"
)

// defaultCity is the documented placeholder used when no candidate path
// yields a city.
const defaultCity = "Unknown"

// Parser maps decoded feed trees into canonical Property records.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new Parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Decode parses raw feed bytes in the given format into a generic tree.
func (p *Parser) Decode(data []byte, format Format) (map[string]any, error) {
	return Decode(data, format)
}

// Normalize walks the decoded tree, locates the record container and maps
// every record through the extraction rules. A record that fails to
// normalize is dropped and logged; one malformed record must not lose the
// entire feed. Output IDs are unique within the returned slice.
// Normalize never mutates the tree, so repeated calls yield identical output.
func (p *Parser) Normalize(tree map[string]any) []domain.Property {
	records := listAt(tree, containerPaths)
	if records == nil {
		p.logger.Warn("no known record container in feed tree")
		return []domain.Property{}
	}

	out := make([]domain.Property, 0, len(records))
	seen := make(map[string]int, len(records))
	dropped := 0

	for i, rec := range records {
		prop, err := p.normalizeRecord(rec)
		if err != nil {
			dropped++
			p.logger.Warn("dropping malformed feed record",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		// Keep IDs unique within the batch. Collisions get a
		// deterministic ordinal suffix so repeated runs agree; the
		// ordinal advances past any id the feed already used, so a
		// natural "dup-2" never collides with a synthesized one.
		if n, dup := seen[prop.ID]; dup {
			base := prop.ID
			for {
				n++
				prop.ID = fmt.Sprintf("%s-%d", base, n)
				if _, taken := seen[prop.ID]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[prop.ID] = 1

		out = append(out, prop)
	}

	p.logger.Info("feed normalized",
		zap.Int("records", len(records)),
		zap.Int("properties", len(out)),
		zap.Int("dropped", dropped),
	)

	return out
}

// normalizeRecord maps one raw record into a Property. Missing fields fall
// back to documented defaults; only a structurally unusable record errors.
func (p *Parser) normalizeRecord(rec any) (prop domain.Property, err error) {
	// A rogue value deep in a record must cost that record only.
	defer func() {
		if r := recover(); r != nil {
			err = &domain.NormalizationError{
				Record: prop.ID,
				Err:    fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if _, ok := scalar(rec).(map[string]any); !ok {
		return prop, &domain.NormalizationError{
			Err: fmt.Errorf("record is %T, expected object", rec),
		}
	}

	prop.Source = domain.SourceFeed
	prop.Operation.Kind = extractOperationKind(rec)
	prop.Operation.Price = extractPrice(rec, prop.Operation.Kind)
	prop.Operation.Currency = stringOr(rec, currencyPaths, "EUR")

	prop.Address = domain.Address{
		Street:     stringOr(rec, streetPaths, ""),
		City:       stringOr(rec, cityPaths, defaultCity),
		Province:   stringOr(rec, provincePaths, ""),
		PostalCode: stringOr(rec, postalCodePaths, ""),
	}
	if v, ok := firstMatch(rec, latitudePaths); ok {
		prop.Address.Latitude = asFloat(v)
	}
	if v, ok := firstMatch(rec, longitudePaths); ok {
		prop.Address.Longitude = asFloat(v)
	}

	prop.Features = domain.Features{
		Rooms:     intOr(rec, roomsPaths),
		Bathrooms: intOr(rec, bathroomsPaths),
		AreaM2:    intOr(rec, areaPaths),
		Floor:     stringOr(rec, floorPaths, ""),
	}

	prop.Descriptions = extractDescriptions(rec)
	prop.Images = extractImages(rec)
	prop.Status = extractStatus(rec)

	if v, ok := firstMatch(rec, publishedAtPaths); ok {
		prop.PublishedAt = asTime(v)
	}
	if v, ok := firstMatch(rec, updatedAtPaths); ok {
		prop.UpdatedAt = asTime(v)
	}

	prop.ExternalRef = stringOr(rec, externalRefPaths, "")
	prop.ID = stringOr(rec, idPaths, "")
	if prop.ID == "" {
		prop.ID = synthesizeID(prop)
	}

	return prop, nil
}

// stringOr extracts the first matching string value, or def.
func stringOr(rec any, paths []string, def string) string {
	if v, ok := firstMatch(rec, paths); ok {
		if s := asString(v); s != "" {
			return s
		}
	}
	return def
}

// intOr extracts the first matching numeric value, or 0.
func intOr(rec any, paths []string) int {
	if v, ok := firstMatch(rec, paths); ok {
		return asInt(v)
	}
	return 0
}

func extractOperationKind(rec any) domain.OperationKind {
	v, ok := firstMatch(rec, operationKindPaths)
	if !ok {
		return domain.OperationSale
	}
	s := strings.ToLower(asString(v))
	if strings.Contains(s, "rent") || strings.Contains(s, "alquiler") {
		return domain.OperationRent
	}
	return domain.OperationSale
}

func extractPrice(rec any, kind domain.OperationKind) int {
	paths := salePricePaths
	if kind == domain.OperationRent {
		paths = rentPricePaths
	}
	return intOr(rec, paths)
}

func extractStatus(rec any) domain.Status {
	v, ok := firstMatch(rec, statusPaths)
	if !ok {
		return domain.StatusActive
	}
	switch strings.ToLower(asString(v)) {
	case "0", "false", "inactive", "archived", "hidden", "off":
		return domain.StatusInactive
	default:
		return domain.StatusActive
	}
}

func extractDescriptions(rec any) []domain.Description {
	items := listAt(rec, descriptionListPaths)
	descs := make([]domain.Description, 0, len(items))
	for _, item := range items {
		d := domain.Description{
			Language: stringOr(item, descriptionLangPaths, ""),
			Text:     stringOr(item, descriptionTextPaths, ""),
		}
		// A bare string is a description without a language tag.
		if d.Text == "" {
			if s := asString(scalar(item)); s != "" {
				d.Text = s
			}
		}
		if d.Text != "" {
			descs = append(descs, d)
		}
	}
	return descs
}

func extractImages(rec any) []domain.Image {
	items := listAt(rec, imageListPaths)
	images := make([]domain.Image, 0, len(items))
	for i, item := range items {
		img := domain.Image{
			URL:       stringOr(item, imageURLPaths, ""),
			Width:     intOr(item, imageWidthPaths),
			Height:    intOr(item, imageHeightPaths),
			SizeBytes: intOr(item, imageSizePaths),
			Tag:       stringOr(item, imageTagPaths, ""),
			Position:  i,
		}
		if img.URL == "" {
			if s := asString(scalar(item)); s != "" {
				img.URL = s
			}
		}
		if v, ok := firstMatch(item, imagePositionPaths); ok {
			img.Position = asInt(v)
		}
		if img.URL != "" {
			images = append(images, img)
		}
	}
	return images
}

// synthesizeID derives a stable identifier for records the feed ships
// without one. The hash input uses fields that identify the listing, so
// re-normalizing the same tree yields the same ID.
func synthesizeID(p domain.Property) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%d",
		p.ExternalRef, p.Address.Street, p.Address.PostalCode,
		p.Address.City, p.Operation.Price,
	)
	return fmt.Sprintf("gen-%016x", h.Sum64())
}
