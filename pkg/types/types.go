package types

import "time"

// Postcode is one row of the postcode table. The postcode value is stored
// normalized only: lowercase, no whitespace, at most 7 alphanumeric chars.
type Postcode struct {
	ID        int64     `json:"id"`
	Postcode  string    `json:"postcode"`
	Eastings  int       `json:"eastings"`
	Northings int       `json:"northings"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Import is the ledger row for one seen source archive. updated_at acts as
// a "last seen" marker, not an audit trail.
type Import struct {
	ID          int64     `json:"id"`
	ContentHash string    `json:"content_hash"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductDescriptor is one element of the download API's descriptor array.
type ProductDescriptor struct {
	URL  string `json:"url"`
	MD5  string `json:"md5"`
	Size int64  `json:"size"`
}

// TextResult is the payload of a text search.
type TextResult struct {
	Term    string     `json:"term"`
	Page    int        `json:"page"`
	Count   int        `json:"count"`
	Results []Postcode `json:"results"`
}

// NearbyPostcode is one radius search match.
type NearbyPostcode struct {
	Postcode   string  `json:"postcode"`
	DistanceKm float64 `json:"distance_km"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// RadiusResult is the payload of a radius search.
type RadiusResult struct {
	RadiusKm float64          `json:"radius_km"`
	Count    int              `json:"count"`
	Results  []NearbyPostcode `json:"results"`
}
