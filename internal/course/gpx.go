package course

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"backend-raceplanner/internal/shared/apperr"
	"backend-raceplanner/internal/shared/num"

	"github.com/tkrajina/gpxgo/gpx"
)

// RawPoint is a parsed coordinate before distance accumulation.
type RawPoint struct {
	Lat        float64
	Lon        float64
	ElevationM *float64
}

// ParseTrack reads track points from a GPX document, falling back to route
// points when the file carries no track. Points with non-finite coordinates
// are skipped.
//
// gpxgo rejects the whole document on the first malformed coordinate or
// elevation; in that case the points are recovered one by one instead.
func ParseTrack(payload []byte) ([]RawPoint, error) {
	doc, err := gpx.ParseBytes(payload)
	if err != nil {
		points, lenientErr := scanPoints(payload)
		if lenientErr != nil {
			return nil, apperr.InvalidInput("Invalid GPX: " + err.Error())
		}
		return points, nil
	}

	var points []RawPoint
	for _, track := range doc.Tracks {
		for _, segment := range track.Segments {
			for i := range segment.Points {
				points = appendPoint(points, &segment.Points[i])
			}
		}
	}
	if len(points) == 0 {
		for _, route := range doc.Routes {
			for i := range route.Points {
				points = appendPoint(points, &route.Points[i])
			}
		}
	}
	return points, nil
}

func appendPoint(points []RawPoint, p *gpx.GPXPoint) []RawPoint {
	if !num.Finite(p.Latitude) || !num.Finite(p.Longitude) {
		return points
	}
	raw := RawPoint{Lat: p.Latitude, Lon: p.Longitude}
	if p.Elevation.NotNull() && num.Finite(p.Elevation.Value()) {
		ele := p.Elevation.Value()
		raw.ElevationM = &ele
	}
	return append(points, raw)
}

// scanPoints walks trkpt and rtept elements. A point with an unreadable lat
// or lon is dropped, an unreadable ele only loses its elevation.
func scanPoints(payload []byte) ([]RawPoint, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))

	var track, route []RawPoint
	var current *RawPoint
	var currentOK bool
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "trkpt", "rtept":
				lat, latOK := attrFloat(el, "lat")
				lon, lonOK := attrFloat(el, "lon")
				current = &RawPoint{Lat: lat, Lon: lon}
				currentOK = latOK && lonOK
			case "ele":
				if current == nil {
					continue
				}
				var text string
				if err := dec.DecodeElement(&text, &el); err != nil {
					return nil, err
				}
				if ele, ok := parseFloat(text); ok {
					current.ElevationM = &ele
				}
			}
		case xml.EndElement:
			if current == nil || (el.Name.Local != "trkpt" && el.Name.Local != "rtept") {
				continue
			}
			if currentOK {
				if el.Name.Local == "trkpt" {
					track = append(track, *current)
				} else {
					route = append(route, *current)
				}
			}
			current = nil
		}
	}

	if len(track) > 0 {
		return track, nil
	}
	return route, nil
}

func attrFloat(el xml.StartElement, name string) (float64, bool) {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			return parseFloat(attr.Value)
		}
	}
	return 0, false
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !num.Finite(v) {
		return 0, false
	}
	return v, true
}
