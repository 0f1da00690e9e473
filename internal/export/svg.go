package export

import (
	"fmt"
	"strings"
)

// Series is one polyline of a chart.
type Series struct {
	Values []float64
	Color  string
}

// ChartSVG draws series sharing an x range [0, upper) as polylines on a dark
// background. All series are scaled to the same y range, starting at zero.
func ChartSVG(series []Series, upper float64, width, height int, caption string) string {
	maxY := 0.0
	points := 0
	for _, s := range series {
		points = max(points, len(s.Values))
		for _, v := range s.Values {
			maxY = max(maxY, v)
		}
	}
	if points < 2 || upper <= 0 {
		return ""
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		n := len(s.Values)
		if n < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Color))
		for i, v := range s.Values {
			// plot each bin at its midpoint
			x := (float64(i) + 0.5) / float64(n) * float64(width)
			y := float64(height) - v/maxY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
	}

	if caption != "" {
		sb.WriteString(fmt.Sprintf(`<text x="8" y="18" fill="#888899" font-family="monospace" font-size="12">%s (x: 0..%.4g)</text>
`, escape(caption), upper))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
