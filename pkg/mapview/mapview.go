package mapview

import (
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/workflow"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	SourceZoom  = 13
	DefaultZoom = 5

	RoleSource      = "source"
	RoleDestination = "destination"
)

// DefaultCenter is where the map opens before the source is known.
var DefaultCenter = datastructure.NewCoordinate(20, 78)

var googleSubdomains = []string{"mt0", "mt1", "mt2", "mt3"}

type TileLayer struct {
	Name       string   `json:"name"`
	URL        string   `json:"url"`
	Subdomains []string `json:"subdomains,omitempty"`
	Checked    bool     `json:"checked"`
}

// BaseLayers are the selectable backgrounds. The first one is shown by default.
func BaseLayers() []TileLayer {
	return []TileLayer{
		{Name: "Default", URL: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", Checked: true},
		{Name: "Satellite", URL: "https://{s}.google.com/vt/lyrs=s&x={x}&y={y}&z={z}", Subdomains: googleSubdomains},
		{Name: "Terrain", URL: "https://{s}.google.com/vt/lyrs=p&x={x}&y={y}&z={z}", Subdomains: googleSubdomains},
	}
}

type Icon struct {
	URL    string `json:"url"`
	Size   [2]int `json:"size"`
	Anchor [2]int `json:"anchor"`
}

var (
	BlueIcon = Icon{
		URL:    "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-blue.png",
		Size:   [2]int{30, 45},
		Anchor: [2]int{15, 45},
	}
	RedIcon = Icon{
		URL:    "https://raw.githubusercontent.com/pointhi/leaflet-color-markers/master/img/marker-icon-red.png",
		Size:   [2]int{30, 45},
		Anchor: [2]int{15, 45},
	}
)

type Marker struct {
	Role     string                   `json:"role"`
	Position datastructure.Coordinate `json:"position"`
	Icon     Icon                     `json:"icon"`
	Popup    string                   `json:"popup"`
}

type Polyline struct {
	Positions datastructure.RouteGeometry `json:"positions"`
	Color     string                      `json:"color"`
	Weight    int                         `json:"weight"`
	DashArray string                      `json:"dash_array"`
	Opacity   float64                     `json:"opacity"`
}

type Bounds struct {
	SouthWest datastructure.Coordinate `json:"south_west"`
	NorthEast datastructure.Coordinate `json:"north_east"`
}

// View is a declarative description of the map for one session state.
type View struct {
	Center     datastructure.Coordinate    `json:"center"`
	Zoom       int                         `json:"zoom"`
	BaseLayers []TileLayer                 `json:"base_layers"`
	Markers    []Marker                    `json:"markers"`
	Polyline   *Polyline                   `json:"polyline,omitempty"`
	Bounds     *Bounds                     `json:"bounds,omitempty"`
	Summary    *datastructure.RouteSummary `json:"summary,omitempty"`
	Loading    bool                        `json:"loading"`
}

// Render maps the state to what is drawn. It has no side effects.
func Render(s workflow.SessionState) View {
	v := View{
		Center:     DefaultCenter,
		Zoom:       DefaultZoom,
		BaseLayers: BaseLayers(),
		Markers:    []Marker{},
		Loading:    s.Loading,
	}

	if s.Source != nil {
		v.Center = *s.Source
		v.Zoom = SourceZoom
		v.Markers = append(v.Markers, Marker{Role: RoleSource, Position: *s.Source, Icon: BlueIcon, Popup: s.SourceQuery})
	}
	if s.Destination != nil {
		v.Markers = append(v.Markers, Marker{Role: RoleDestination, Position: *s.Destination, Icon: RedIcon, Popup: s.DestinationQuery})
	}

	if s.HasRoute() {
		v.Polyline = &Polyline{
			Positions: s.Route.Geometry.Clone(),
			Color:     "blue",
			Weight:    6,
			DashArray: "10, 10",
			Opacity:   0.8,
		}
		summary := s.Route.Summary
		v.Summary = &summary
	}

	v.Bounds = v.bounds()
	return v
}

func (v View) bounds() *Bounds {
	rect := s2.EmptyRect()
	for _, m := range v.Markers {
		rect = rect.AddPoint(m.Position.LatLng())
	}
	if v.Polyline != nil {
		for _, c := range v.Polyline.Positions {
			rect = rect.AddPoint(c.LatLng())
		}
	}
	if rect.IsEmpty() {
		return nil
	}
	return &Bounds{
		SouthWest: datastructure.CoordinateFromLatLng(rect.Lo()),
		NorthEast: datastructure.CoordinateFromLatLng(rect.Hi()),
	}
}

// FeatureCollection returns the markers as points and the route as a line string.
func (v View) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, m := range v.Markers {
		f := geojson.NewFeature(orb.Point{m.Position.Lon, m.Position.Lat})
		f.Properties["role"] = m.Role
		f.Properties["popup"] = m.Popup
		f.Properties["icon"] = m.Icon.URL
		fc.Append(f)
	}

	if v.Polyline != nil {
		line := make(orb.LineString, 0, len(v.Polyline.Positions))
		for _, c := range v.Polyline.Positions {
			line = append(line, orb.Point{c.Lon, c.Lat})
		}
		f := geojson.NewFeature(line)
		f.Properties["role"] = "route"
		f.Properties["stroke"] = v.Polyline.Color
		f.Properties["stroke-width"] = v.Polyline.Weight
		f.Properties["stroke-opacity"] = v.Polyline.Opacity
		f.Properties["dash_array"] = v.Polyline.DashArray
		if v.Summary != nil {
			f.Properties["distance_km"] = v.Summary.DistanceKm
			f.Properties["duration_min"] = v.Summary.DurationMin
		}
		fc.Append(f)
	}
	return fc
}

func (v View) GeoJSON() ([]byte, error) {
	return v.FeatureCollection().MarshalJSON()
}
