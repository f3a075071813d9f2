package skymap

import (
	"fmt"
	"math"
	"strings"

	"github.com/skyplot/skyplot/pkg/core"
)

// Annotate builds the text block placed in the plot corner: the event ID
// when known, then the enclosed area of every contour.
func Annotate(meta core.Metadata, contours []core.Contour) string {
	var lines []string
	if meta.ObjectID != "" {
		lines = append(lines, "event ID: "+meta.ObjectID)
	}
	for _, c := range contours {
		lines = append(lines, fmt.Sprintf("%d%% area: %d deg²", int(math.RoundToEven(c.Percent)), c.Area))
	}
	return strings.Join(lines, "\n")
}
