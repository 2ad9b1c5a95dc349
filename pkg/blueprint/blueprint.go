package blueprint

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/dashboard"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// panelNamespace seeds generated panel ids so the same blueprint always
// yields the same ids.
var panelNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/AnarchicSoul/trivy-dashgen/panel"))

// Blueprint is a YAML document describing data views and dashboards.
type Blueprint struct {
	DataViews  []DataView  `yaml:"data_views"`
	Dashboards []Dashboard `yaml:"dashboards"`
}

type DataView struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`      // index pattern
	Name      string `yaml:"name"`       // display name
	TimeField string `yaml:"time_field"` // defaults to @timestamp
}

type Dashboard struct {
	ID          string    `yaml:"id"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	TimeFrom    string    `yaml:"time_from"`
	TimeTo      string    `yaml:"time_to"`
	Controls    []Control `yaml:"controls"`
	Panels      []Panel   `yaml:"panels"`
}

type Control struct {
	ID          string `yaml:"id"`
	Field       string `yaml:"field"`
	Title       string `yaml:"title"`
	Placeholder string `yaml:"placeholder"`
	Width       string `yaml:"width"`
}

type Panel struct {
	ID       string   `yaml:"id"` // generated when empty
	Kind     string   `yaml:"kind"`
	Title    string   `yaml:"title"`
	Grid     Grid     `yaml:"grid"`
	Query    string   `yaml:"query"`
	DataView string   `yaml:"data_view"`
	Shape    string   `yaml:"shape"`  // pie only
	Series   string   `yaml:"series"` // xy only
	Columns  []Column `yaml:"columns"`
}

type Grid struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type Column struct {
	ID             string `yaml:"id"`
	Label          string `yaml:"label"`
	Field          string `yaml:"field"`
	Agg            string `yaml:"agg"`
	Size           int    `yaml:"size"`
	OrderBy        string `yaml:"order_by"`
	OrderDirection string `yaml:"order_direction"`
	Interval       string `yaml:"interval"`
	Filter         string `yaml:"filter"`
}

// Parse decodes a blueprint. Unknown keys are rejected so typos surface
// instead of silently falling back to defaults.
func Parse(r io.Reader) (*Blueprint, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var bp Blueprint
	if err := dec.Decode(&bp); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, savedobject.Invalidf("blueprint is empty")
		}
		return nil, errors.Mark(errors.Wrap(err, "failed to parse blueprint"), savedobject.ErrInvalidConfig)
	}
	if len(bp.DataViews) == 0 && len(bp.Dashboards) == 0 {
		return nil, savedobject.Invalidf("blueprint defines no data views or dashboards")
	}
	return &bp, nil
}

// Load reads and parses the blueprint at path.
func Load(fs afero.Fs, path string) (*Blueprint, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read blueprint %s", path)
	}
	bp, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return bp, nil
}

// IndexPatternSpecs converts the data views.
func (bp *Blueprint) IndexPatternSpecs() []dashboard.IndexPatternSpec {
	specs := make([]dashboard.IndexPatternSpec, len(bp.DataViews))
	for i, dv := range bp.DataViews {
		specs[i] = dashboard.IndexPatternSpec{
			ID:        dv.ID,
			Title:     dv.Title,
			Name:      dv.Name,
			TimeField: dv.TimeField,
		}
	}
	return specs
}

// DashboardSpecs converts the dashboards, assigning ids to panels that
// have none.
func (bp *Blueprint) DashboardSpecs() []dashboard.Spec {
	specs := make([]dashboard.Spec, len(bp.Dashboards))
	for i, d := range bp.Dashboards {
		spec := dashboard.Spec{
			ID:          d.ID,
			Title:       d.Title,
			Description: d.Description,
			TimeFrom:    d.TimeFrom,
			TimeTo:      d.TimeTo,
		}
		for _, c := range d.Controls {
			spec.Controls = append(spec.Controls, dashboard.ControlSpec(c))
		}
		for j, p := range d.Panels {
			spec.Panels = append(spec.Panels, p.spec(d.ID, j))
		}
		specs[i] = spec
	}
	return specs
}

func (p Panel) spec(dashboardID string, index int) lens.PanelSpec {
	id := p.ID
	if id == "" {
		id = PanelID(dashboardID, index, p.Title)
	}
	spec := lens.PanelSpec{
		ID:         id,
		Kind:       lens.Kind(p.Kind),
		Title:      p.Title,
		Grid:       lens.Grid{X: p.Grid.X, Y: p.Grid.Y, W: p.Grid.W, H: p.Grid.H},
		Query:      p.Query,
		DataSource: p.DataView,
		Shape:      p.Shape,
		Series:     lens.SeriesType(p.Series),
	}
	for _, c := range p.Columns {
		spec.Columns = append(spec.Columns, lens.ColumnSpec{
			ID:             c.ID,
			Label:          c.Label,
			Field:          c.Field,
			Agg:            lens.Agg(c.Agg),
			Size:           c.Size,
			OrderBy:        c.OrderBy,
			OrderDirection: c.OrderDirection,
			Interval:       c.Interval,
			Filter:         c.Filter,
		})
	}
	return spec
}

// PanelID derives a stable panel id from the panel's position and title.
func PanelID(dashboardID string, index int, title string) string {
	return uuid.NewSHA1(panelNamespace, []byte(fmt.Sprintf("%s/%d/%s", dashboardID, index, title))).String()
}

// Records builds every data view and dashboard, data views first.
func (bp *Blueprint) Records(opts dashboard.Options) ([]savedobject.Record, error) {
	var records []savedobject.Record
	for _, spec := range bp.IndexPatternSpecs() {
		rec, err := dashboard.IndexPattern(spec, opts).Record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	for _, spec := range bp.DashboardSpecs() {
		d, err := dashboard.New(spec, opts)
		if err != nil {
			return nil, err
		}
		rec, err := d.Record()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
