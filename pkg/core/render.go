// pkg/core/render.go
package core

// RenderRequest is everything the rendering backend needs to draw one plot.
type RenderRequest struct {
	ObjectID   string               `json:"objectId,omitempty"`
	Nside      int                  `json:"nside"`
	Density    DensityMap           `json:"density"`
	VMin       float64              `json:"vmin"`
	VMax       float64              `json:"vmax"`
	Levels     *CredibleLevelMap    `json:"levels,omitempty"`
	Contours   []Contour            `json:"contours,omitempty"`
	Projection ProjectionDescriptor `json:"projection"`
	Markers    []Marker             `json:"markers"`
	Backdrop   []Segment            `json:"backdrop,omitempty"`
	Colorbar   bool                 `json:"colorbar"`
	// ColorbarLabel is empty unless Colorbar is set.
	ColorbarLabel string `json:"colorbarLabel,omitempty"`
	Annotation    string `json:"annotation,omitempty"`
	// Warnings lists recoverable source failures met while building the request.
	Warnings []string `json:"warnings,omitempty"`
}
