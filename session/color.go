package session

import (
	"fmt"
	"math"

	"github.com/dora-ryukyu/word2vec3d/preload"
	"github.com/dora-ryukyu/word2vec3d/projection"
)

// ColorFor returns the "#rrggbb" colour of a point. User-entered words map
// their normalized position straight to RGB so nearby words share a hue;
// every other category uses its palette colour.
func ColorFor(category string, normalized projection.Point3D, palette map[string]string) string {
	if category == preload.UserCategory {
		return fmt.Sprintf("#%02x%02x%02x",
			channel(normalized[0]),
			channel(normalized[1]),
			channel(normalized[2]),
		)
	}
	if color, ok := palette[category]; ok {
		return color
	}
	return preload.FallbackColor
}

func channel(value float64) int {
	return int(math.Round(math.Max(0, math.Min(1, value)) * 255))
}
