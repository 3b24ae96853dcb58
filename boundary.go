/*
Copyright © 2026 the GridExtract authors.
This file is part of GridExtract.

GridExtract is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridExtract is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridExtract.  If not, see <http://www.gnu.org/licenses/>.*/

package gridextract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/requestcache/v2"
)

// DefaultBoundaryAPI is the geoBoundaries API endpoint for the open
// (gbOpen) boundary collection.
const DefaultBoundaryAPI = "https://www.geoboundaries.org/api/current/gbOpen"

// Region is one named administrative boundary polygon.
type Region struct {
	Name string
	ISO  string
	Geom geom.Polygonal
}

// BoundarySet holds the boundary polygons for one country at one
// administrative level.
type BoundarySet struct {
	Country string

	// Level is the administrative level the regions are at. It may be
	// lower than the requested level if the country is not subdivided
	// that far, in which case the fetcher falls back to ADM0.
	Level int

	Regions []*Region
}

// BoundaryClient fetches administrative boundary polygons from a
// geoBoundaries-compatible web API. Responses are cached in memory for
// the lifetime of the client, so repeated fetches within one process
// hit the network once; nothing is persisted across runs.
type BoundaryClient struct {
	// BaseURL is the API endpoint; if empty, DefaultBoundaryAPI is used.
	BaseURL string

	// HTTPClient is the client used for API requests; if nil,
	// http.DefaultClient is used.
	HTTPClient *http.Client

	cache *requestcache.Cache
}

// NewBoundaryClient creates a BoundaryClient for the API rooted at
// baseURL ("" means DefaultBoundaryAPI).
func NewBoundaryClient(baseURL string) *BoundaryClient {
	return &BoundaryClient{
		BaseURL: baseURL,
		cache:   requestcache.NewCache(1, requestcache.Deduplicate(), requestcache.Memory(100)),
	}
}

// boundaryMeta is one record of the API's per-country boundary listing.
type boundaryMeta struct {
	BoundaryType              string `json:"boundaryType"`
	BoundaryName              string `json:"boundaryName"`
	BoundaryISO               string `json:"boundaryISO"`
	SimplifiedGeometryGeoJSON string `json:"simplifiedGeometryGeoJSON"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Properties struct {
		ShapeName string `json:"shapeName"`
		ShapeISO  string `json:"shapeISO"`
	} `json:"properties"`
	Geometry json.RawMessage `json:"geometry"`
}

var iso3RE = regexp.MustCompile("^[A-Z]{3}$")

// Boundaries fetches the boundary polygons for the given ISO3 country
// code at the given administrative level (0–2). If the country has no
// boundaries at the requested level, the ADM0 boundary is returned
// instead; compare BoundarySet.Level with the requested level to
// detect the fallback.
func (c *BoundaryClient) Boundaries(ctx context.Context, country string, level int) (*BoundarySet, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if !iso3RE.MatchString(country) {
		return nil, fmt.Errorf("gridextract: %q is not an ISO3 country code", country)
	}
	if level < 0 || level > 2 {
		return nil, fmt.Errorf("gridextract: administrative level must be between 0 and 2 but is %d", level)
	}

	metaURL := fmt.Sprintf("%s/%s/ALL/", c.baseURL(), country)
	body, err := c.fetch(ctx, metaURL)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Country: country, Level: level}
		}
		return nil, &NetworkError{URL: metaURL, Err: err}
	}
	var levels []boundaryMeta
	if err := json.Unmarshal(body, &levels); err != nil {
		return nil, &NetworkError{URL: metaURL, Err: fmt.Errorf("decoding boundary listing: %v", err)}
	}
	if len(levels) == 0 {
		return nil, &NotFoundError{Country: country, Level: level}
	}

	meta, got := selectLevel(levels, level)
	if meta == nil {
		return nil, &NotFoundError{Country: country, Level: level}
	}

	geoURL := meta.SimplifiedGeometryGeoJSON
	body, err = c.fetch(ctx, geoURL)
	if err != nil {
		if errors.Is(err, errStatusNotFound) {
			return nil, &NotFoundError{Country: country, Level: got}
		}
		return nil, &NetworkError{URL: geoURL, Err: err}
	}
	var fc geoJSONFeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, &NetworkError{URL: geoURL, Err: fmt.Errorf("decoding boundary GeoJSON: %v", err)}
	}

	o := &BoundarySet{Country: country, Level: got}
	for i := range fc.Features {
		f := &fc.Features[i]
		g, err := geojson.Decode(f.Geometry)
		if err != nil {
			return nil, &NetworkError{URL: geoURL, Err: fmt.Errorf("decoding boundary geometry: %v", err)}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, &NetworkError{URL: geoURL, Err: fmt.Errorf("boundary geometry is %T; want a polygon", g)}
		}
		name := f.Properties.ShapeName
		if name == "" {
			name = meta.BoundaryName
		}
		o.Regions = append(o.Regions, &Region{
			Name: name,
			ISO:  f.Properties.ShapeISO,
			Geom: p,
		})
	}
	if len(o.Regions) == 0 {
		return nil, &NotFoundError{Country: country, Level: got}
	}
	return o, nil
}

// selectLevel picks the listing record for the requested level,
// falling back to ADM0 when the country is not subdivided that far.
func selectLevel(levels []boundaryMeta, level int) (*boundaryMeta, int) {
	want := fmt.Sprintf("ADM%d", level)
	for i := range levels {
		if levels[i].BoundaryType == want {
			return &levels[i], level
		}
	}
	for i := range levels {
		if levels[i].BoundaryType == "ADM0" {
			return &levels[i], 0
		}
	}
	return nil, 0
}

func (c *BoundaryClient) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBoundaryAPI
	}
	return strings.TrimSuffix(c.BaseURL, "/")
}

func (c *BoundaryClient) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// fetch retrieves url through the in-memory request cache.
func (c *BoundaryClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req := c.cache.NewRequest(ctx, &httpRequest{c: c, url: url})
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

var errStatusNotFound = errors.New("not found")

// httpRequest is a requestcache.Cacheable for one HTTP GET.
type httpRequest struct {
	c   *BoundaryClient
	url string
}

func (r *httpRequest) Key() string { return r.url }

func (r *httpRequest) Run(ctx context.Context) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errStatusNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
