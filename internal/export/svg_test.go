package export

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestChartSVG(t *testing.T) {
	svg := ChartSVG([]Series{
		{Values: []float64{4, 2, 1, 0.5}, Color: "#00ff88"},
		{Values: []float64{3.9, 2.1, 1.1, 0.4}, Color: "#ff4444"},
	}, 2.0, 400, 200, "dt <density>")

	if strings.Count(svg, "<path") != 2 {
		t.Errorf("expected 2 paths:\n%s", svg)
	}
	if !strings.Contains(svg, "dt &lt;density&gt;") {
		t.Error("caption not escaped")
	}

	var doc struct{ XMLName xml.Name }
	if err := xml.Unmarshal([]byte(svg), &doc); err != nil {
		t.Errorf("invalid xml: %v", err)
	}
	if doc.XMLName.Local != "svg" {
		t.Errorf("root element %q", doc.XMLName.Local)
	}
}

func TestChartSVGTooFewPoints(t *testing.T) {
	if ChartSVG([]Series{{Values: []float64{1}}}, 1, 10, 10, "") != "" {
		t.Error("expected empty output for a single point")
	}
	if ChartSVG([]Series{{Values: []float64{1, 2}}}, 0, 10, 10, "") != "" {
		t.Error("expected empty output for empty range")
	}
}
