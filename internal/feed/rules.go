package feed

// Extraction rules. Each canonical field is read through an ordered list of
// candidate paths inside a record; the first present, non-empty value wins.
// Paths are dot-separated, matched case-insensitively, and singleton lists
// are unwrapped at every step (see tree.go), so one entry covers the
// casing and singular/plural variants a given revision introduces.
//
// The feed's record-container key has varied across revisions; which shape
// is authoritative going forward is undocumented, so container discovery
// stays a data-driven list too. Extend these tables, never the walker.

// containerPaths are the known top-level shapes holding the record list.
var containerPaths = []string{
	"properties.property",
	"root.properties.property",
	"feed.properties.property",
	"export.properties.property",
	"data.properties",
	"listings.listing",
	"properties",
}

var idPaths = []string{
	"id",
	"-id",
	"property-id",
	"propertyId",
	"reference.id",
}

var externalRefPaths = []string{
	"external-reference",
	"externalReference",
	"reference",
	"ref",
	"agency-reference",
}

var operationKindPaths = []string{
	"operation",
	"operation-type",
	"operationType",
	"prices.by-operation.operation",
	"transaction",
}

// Price lives under a per-operation block in recent revisions and at the
// record root in older ones.
var salePricePaths = []string{
	"prices.by-operation.sale.price",
	"prices.byOperation.sale.price",
	"prices.sale.price",
	"price.sale",
	"price",
}

var rentPricePaths = []string{
	"prices.by-operation.rent.price",
	"prices.byOperation.rent.price",
	"prices.rent.price",
	"price.rent",
	"price",
}

var currencyPaths = []string{
	"prices.by-operation.sale.currency",
	"prices.by-operation.rent.currency",
	"prices.currency",
	"currency",
}

var streetPaths = []string{
	"address.street",
	"address.name",
	"location.street",
	"street",
}

var cityPaths = []string{
	"address.city",
	"address.town",
	"location.city",
	"city",
	"town",
}

var provincePaths = []string{
	"address.province",
	"address.region",
	"location.province",
	"province",
}

var postalCodePaths = []string{
	"address.postal-code",
	"address.postalCode",
	"address.zip",
	"postal-code",
	"zipcode",
}

var latitudePaths = []string{
	"address.coordinates.latitude",
	"location.coordinates.lat",
	"coordinates.latitude",
	"latitude",
	"lat",
}

var longitudePaths = []string{
	"address.coordinates.longitude",
	"location.coordinates.lng",
	"coordinates.longitude",
	"longitude",
	"lng",
}

var roomsPaths = []string{
	"property.housing.room-number",
	"property.housing.roomNumber",
	"property.housing.bedroom-number",
	"housing.room-number",
	"features.rooms",
	"rooms",
	"bedrooms",
}

var bathroomsPaths = []string{
	"property.housing.bathroom-number",
	"property.housing.bathroomNumber",
	"housing.bathroom-number",
	"features.bathrooms",
	"bathrooms",
}

var areaPaths = []string{
	"property.housing.constructed-area",
	"property.housing.constructedArea",
	"housing.constructed-area",
	"features.area",
	"surface",
	"area",
}

var floorPaths = []string{
	"property.housing.floor",
	"housing.floor",
	"features.floor",
	"floor",
}

var statusPaths = []string{
	"status",
	"-status",
	"state",
	"visibility",
}

var publishedAtPaths = []string{
	"published-at",
	"publishedAt",
	"publication-date",
	"created-at",
	"creation-date",
}

var updatedAtPaths = []string{
	"updated-at",
	"updatedAt",
	"last-modified",
	"modification-date",
	"modified-at",
}

var descriptionListPaths = []string{
	"descriptions.description",
	"descriptions",
	"description",
}

var descriptionTextPaths = []string{
	"#text",
	"text",
	"value",
	"body",
}

var descriptionLangPaths = []string{
	"-language",
	"-lang",
	"language",
	"lang",
	"locale",
}

var imageListPaths = []string{
	"multimedias.pictures.picture",
	"multimedias.pictures",
	"pictures.picture",
	"images.image",
	"pictures",
	"images",
}

var imageURLPaths = []string{
	"path",
	"url",
	"src",
	"#text",
}

var imageWidthPaths = []string{"-width", "width"}

var imageHeightPaths = []string{"-height", "height"}

var imageSizePaths = []string{"-size", "size", "bytes"}

var imagePositionPaths = []string{"-position", "position", "order"}

var imageTagPaths = []string{"-tag", "tag", "label"}
