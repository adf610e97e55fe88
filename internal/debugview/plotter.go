package debugview

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/banshee-data/ledgewalk/internal/catalog"
	"github.com/banshee-data/ledgewalk/internal/collision"
	"github.com/banshee-data/ledgewalk/internal/ledge"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	boxFill     = color.RGBA{R: 200, G: 200, B: 200, A: 120}
	ledgeColor  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	pathColor   = color.RGBA{R: 30, G: 110, B: 200, A: 255}
	upperColor  = color.RGBA{R: 220, G: 60, B: 40, A: 255}
	lowerColor  = color.RGBA{R: 40, G: 160, B: 80, A: 255}
	targetColor = color.RGBA{R: 150, G: 60, B: 180, A: 255}
)

// FramePlotter draws top-down (X/Z) views of a scene with the character's
// path and the ledges classified on a frame.
type FramePlotter struct {
	outputDir string
	boxes     []collision.Box
	ledges    []*ledge.Ledge
}

// NewFramePlotter creates a plotter writing into outputDir, creating it if
// needed.
func NewFramePlotter(outputDir string, boxes []collision.Box, ledges []*ledge.Ledge) (*FramePlotter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	return &FramePlotter{outputDir: outputDir, boxes: boxes, ledges: ledges}, nil
}

// OutputDir returns the directory plots are written to.
func (fp *FramePlotter) OutputDir() string {
	return fp.outputDir
}

// PlotFrame writes frame_NNNNN.png and returns its path.
func (fp *FramePlotter) PlotFrame(frame int, path []r3.Vec, classified []catalog.ClassifiedLedge) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Frame %d", frame)
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Z (m)"

	for _, b := range fp.boxes {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: b.Min.X, Y: b.Min.Z},
			{X: b.Max.X, Y: b.Min.Z},
			{X: b.Max.X, Y: b.Max.Z},
			{X: b.Min.X, Y: b.Max.Z},
		})
		if err != nil {
			return "", fmt.Errorf("box %s: %w", b.Name, err)
		}
		poly.Color = boxFill
		poly.LineStyle.Width = vg.Points(0.5)
		p.Add(poly)
	}

	for _, l := range fp.ledges {
		end := l.End()
		line, err := plotter.NewLine(plotter.XYs{{X: l.Start.X, Y: l.Start.Z}, {X: end.X, Y: end.Z}})
		if err != nil {
			return "", fmt.Errorf("ledge %s: %w", l.ID, err)
		}
		line.Color = ledgeColor
		line.Width = vg.Points(2)
		p.Add(line)
	}

	if len(path) > 1 {
		line, err := plotter.NewLine(topDown(path))
		if err != nil {
			return "", fmt.Errorf("path: %w", err)
		}
		line.Color = pathColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	var upper, lower, targets plotter.XYs
	for _, c := range classified {
		g := c.GrabPosition().Value
		switch v := c.(type) {
		case catalog.UpperLedge:
			upper = append(upper, plotter.XY{X: g.X, Y: g.Z})
			targets = append(targets, plotter.XY{X: v.Climb.Value.X, Y: v.Climb.Value.Z})
		case catalog.LowerLedge:
			lower = append(lower, plotter.XY{X: g.X, Y: g.Z})
			if v.Down != nil {
				targets = append(targets, plotter.XY{X: v.Down.Value.X, Y: v.Down.Value.Z})
			}
		}
	}
	if err := addGlyphs(p, "upper", upper, upperColor, draw.TriangleGlyph{}); err != nil {
		return "", err
	}
	if err := addGlyphs(p, "lower", lower, lowerColor, draw.CircleGlyph{}); err != nil {
		return "", err
	}
	if err := addGlyphs(p, "target", targets, targetColor, draw.CrossGlyph{}); err != nil {
		return "", err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	file := filepath.Join(fp.outputDir, fmt.Sprintf("frame_%05d.png", frame))
	if err := p.Save(8*vg.Inch, 8*vg.Inch, file); err != nil {
		return "", fmt.Errorf("save frame plot: %w", err)
	}
	return file, nil
}

func addGlyphs(p *plot.Plot, label string, pts plotter.XYs, c color.Color, shape draw.GlyphDrawer) error {
	if len(pts) == 0 {
		return nil
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)
	p.Legend.Add(label, s)
	return nil
}

func topDown(path []r3.Vec) plotter.XYs {
	pts := make(plotter.XYs, len(path))
	for i, v := range path {
		pts[i] = plotter.XY{X: v.X, Y: v.Z}
	}
	return pts
}
