// pkg/core/marker.go
package core

// MarkerStyle is the drawing style shared by a group of markers.
type MarkerStyle struct {
	Symbol    string  `json:"symbol"`
	Color     string  `json:"color"`
	EdgeColor string  `json:"edgeColor"`
	Size      float64 `json:"size"`
}

// MarkerSource names the provider a marker came from.
type MarkerSource string

const (
	SourceExplicit MarkerSource = "explicit"
	SourceDatabase MarkerSource = "database"
	SourceCatalog  MarkerSource = "catalog"
)

// Marker is a styled point to draw on top of the map.
type Marker struct {
	Coord  SkyCoord     `json:"coord"`
	Style  MarkerStyle  `json:"style"`
	Source MarkerSource `json:"source"`
	// X and Y are display-plane coordinates; Visible is false when the point
	// falls on the hidden side of a globe or outside a zoom.
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Segment is one backdrop line, as a list of frame-native coordinates.
type Segment []SkyCoord
