package shipment

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
)

// pointGeoJSON renders a GPS fix as a GeoJSON Point (lng, lat order).
func pointGeoJSON(lat, lng *float64) (json.RawMessage, error) {
	if lat == nil || lng == nil {
		return nil, nil
	}
	p := geom.NewPointFlat(geom.XY, []float64{*lng, *lat})
	b, err := gjson.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
