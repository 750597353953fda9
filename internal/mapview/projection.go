package mapview

import "math"

const (
	// TileSize is the pixel width of one Web Mercator tile at zoom 0.
	TileSize = 512

	MinZoom     = 5.0
	MaxZoom     = 18.0
	DefaultZoom = 12.0

	// Latitudes beyond this cannot be represented in Web Mercator.
	maxMercatorLat = 85.0511287798066
)

// DefaultCenter is the initial map center as [lon, lat].
var DefaultCenter = [2]float64{-71.09415, 42.36027}

// Point is a pixel position relative to the top left corner of the viewport.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projector turns a geographic position into a viewport pixel position.
type Projector interface {
	Project(lon, lat float64) Point
}

// Viewport is the visible region of the map.
type Viewport struct {
	CenterLon float64 `json:"centerLon"`
	CenterLat float64 `json:"centerLat"`
	Zoom      float64 `json:"zoom"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
}

// DefaultViewport is the initial map view for a width by height pixel area.
func DefaultViewport(width, height int) Viewport {
	return Viewport{
		CenterLon: DefaultCenter[0],
		CenterLat: DefaultCenter[1],
		Zoom:      DefaultZoom,
		Width:     width,
		Height:    height,
	}
}

// ClampZoom limits zoom to [MinZoom, MaxZoom]. NaN becomes DefaultZoom.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return DefaultZoom
	}
	return math.Max(MinZoom, math.Min(MaxZoom, zoom))
}

func (v Viewport) worldSize() float64 {
	return TileSize * math.Pow(2, v.Zoom)
}

// world returns the position of lon/lat on the full world map at zoom.
func world(lon, lat, size float64) (float64, float64) {
	lat = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, lat))
	sinLat := math.Sin(lat * math.Pi / 180)

	x := (lon + 180) / 360 * size
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * size
	return x, y
}

// Project returns the pixel position of lon/lat in the viewport.
func (v Viewport) Project(lon, lat float64) Point {
	size := v.worldSize()
	cx, cy := world(v.CenterLon, v.CenterLat, size)
	x, y := world(lon, lat, size)
	return Point{
		X: x - cx + float64(v.Width)/2,
		Y: y - cy + float64(v.Height)/2,
	}
}

// Unproject is the inverse of Project.
func (v Viewport) Unproject(p Point) (lon, lat float64) {
	size := v.worldSize()
	cx, cy := world(v.CenterLon, v.CenterLat, size)
	x := p.X - float64(v.Width)/2 + cx
	y := p.Y - float64(v.Height)/2 + cy

	lon = x/size*360 - 180
	n := math.Pi - 2*math.Pi*y/size
	lat = 180 / math.Pi * math.Atan(math.Sinh(n))
	return lon, lat
}

// Contains reports whether p lies within the viewport grown by margin pixels
// on every side.
func (v Viewport) Contains(p Point, margin float64) bool {
	return p.X >= -margin && p.X <= float64(v.Width)+margin &&
		p.Y >= -margin && p.Y <= float64(v.Height)+margin
}

// Bounds is a geographic rectangle in degrees.
type Bounds struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Bounds returns the geographic rectangle the viewport shows.
func (v Viewport) Bounds() Bounds {
	west, north := v.Unproject(Point{X: 0, Y: 0})
	east, south := v.Unproject(Point{X: float64(v.Width), Y: float64(v.Height)})
	return Bounds{West: west, South: south, East: east, North: north}
}

// PathBounds returns the smallest rectangle holding every {lat, lon} point of
// path. An empty path gives an inverted rectangle that intersects nothing.
func PathBounds(path [][]float64) Bounds {
	b := Bounds{West: math.Inf(1), South: math.Inf(1), East: math.Inf(-1), North: math.Inf(-1)}
	for _, p := range path {
		b.South = math.Min(b.South, p[0])
		b.North = math.Max(b.North, p[0])
		b.West = math.Min(b.West, p[1])
		b.East = math.Max(b.East, p[1])
	}
	return b
}

// Intersects reports whether b and o overlap. Shared edges count.
func (b Bounds) Intersects(o Bounds) bool {
	return b.West <= o.East && o.West <= b.East && b.South <= o.North && o.South <= b.North
}
