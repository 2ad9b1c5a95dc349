package dashboard

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/config"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/lens"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Spec describes a dashboard.
type Spec struct {
	ID          string
	Title       string
	Description string
	Panels      []lens.PanelSpec

	// Time window restored when the dashboard opens. Defaults to the last
	// seven days.
	TimeFrom string
	TimeTo   string

	Controls []ControlSpec
}

// ControlSpec is an options-list control shown above the panels, letting the
// user pick values of Field (a namespace, typically).
type ControlSpec struct {
	ID          string
	Field       string
	Title       string
	Placeholder string
	Width       string // small, medium or large
}

type control struct {
	Order         int           `json:"order"`
	Width         string        `json:"width"`
	Grow          bool          `json:"grow"`
	Type          string        `json:"type"`
	ExplicitInput explicitInput `json:"explicitInput"`
}

type explicitInput struct {
	ID              string   `json:"id"`
	FieldName       string   `json:"fieldName"`
	Title           string   `json:"title"`
	SelectedOptions []string `json:"selectedOptions"`
	ExistsSelected  bool     `json:"existsSelected"`
	Exclude         bool     `json:"exclude"`
	Placeholder     string   `json:"placeholder,omitempty"`
}

type ignoreParentSettings struct {
	IgnoreFilters     bool `json:"ignoreFilters"`
	IgnoreQuery       bool `json:"ignoreQuery"`
	IgnoreTimerange   bool `json:"ignoreTimerange"`
	IgnoreValidations bool `json:"ignoreValidations"`
}

type dashboardOptions struct {
	UseMargins      bool `json:"useMargins"`
	SyncColors      bool `json:"syncColors"`
	SyncCursor      bool `json:"syncCursor"`
	SyncTooltips    bool `json:"syncTooltips"`
	HidePanelTitles bool `json:"hidePanelTitles"`
}

type searchSource struct {
	Query  lens.Query `json:"query"`
	Filter []any      `json:"filter"`
}

var controlWidths = map[string]bool{"small": true, "medium": true, "large": true}

// New builds a dashboard record with its panels embedded in panelsJSON. One
// reference per panel is derived from the panel's data source.
func New(spec Spec, opts Options) (savedobject.Dashboard, error) {
	if spec.ID == "" {
		return savedobject.Dashboard{}, savedobject.Invalidf("dashboard has no id")
	}
	d, err := build(spec, opts)
	if err != nil {
		return savedobject.Dashboard{}, errors.Wrapf(err, "dashboard %q", spec.ID)
	}
	return d, nil
}

func build(spec Spec, opts Options) (savedobject.Dashboard, error) {
	if spec.Title == "" {
		return savedobject.Dashboard{}, savedobject.Invalidf("dashboard has no title")
	}
	if len(spec.Panels) == 0 {
		return savedobject.Dashboard{}, savedobject.Invalidf("dashboard has no panels")
	}

	panels := make([]lens.Panel, 0, len(spec.Panels))
	refs := make([]savedobject.Reference, 0, len(spec.Panels))
	seen := make(map[string]bool, len(spec.Panels))
	for _, ps := range spec.Panels {
		if seen[ps.ID] {
			return savedobject.Dashboard{}, savedobject.Invalidf("duplicate panelIndex %q", ps.ID)
		}
		seen[ps.ID] = true

		p, err := lens.Build(ps)
		if err != nil {
			return savedobject.Dashboard{}, err
		}
		panels = append(panels, p)
		refs = append(refs, savedobject.Reference{
			ID:   ps.DataSourceID(),
			Name: PanelReferenceName(ps.ID, config.DefaultLayerID),
			Type: savedobject.IndexPatternType,
		})
	}

	panelsJSON, err := jsonString(panels)
	if err != nil {
		return savedobject.Dashboard{}, err
	}
	optionsJSON, err := jsonString(dashboardOptions{UseMargins: true, SyncCursor: true})
	if err != nil {
		return savedobject.Dashboard{}, err
	}
	searchJSON, err := jsonString(searchSource{
		Query:  lens.Query{Language: config.QueryLanguage},
		Filter: []any{},
	})
	if err != nil {
		return savedobject.Dashboard{}, err
	}
	controls, err := controlGroup(spec.Controls)
	if err != nil {
		return savedobject.Dashboard{}, err
	}

	ts := opts.timestamp()
	return savedobject.Dashboard{
		Attributes: savedobject.DashboardAttributes{
			ControlGroupInput: controls,
			Description:       spec.Description,
			KibanaSavedObjectMeta: savedobject.SavedObjectMeta{
				SearchSourceJSON: searchJSON,
			},
			OptionsJSON: optionsJSON,
			PanelsJSON:  panelsJSON,
			TimeRestore: true,
			TimeFrom:    orDefault(spec.TimeFrom, config.DefaultTimeFrom),
			TimeTo:      orDefault(spec.TimeTo, config.DefaultTimeTo),
			Title:       spec.Title,
			Version:     1,
		},
		CoreMigrationVersion: config.KibanaVersion,
		CreatedAt:            ts,
		ID:                   spec.ID,
		References:           refs,
		Type:                 savedobject.DashboardType,
		TypeMigrationVersion: config.DashboardMigrationVersion,
		UpdatedAt:            ts,
		Version:              config.ObjectVersion,
	}, nil
}

// PanelReferenceName names the reference from a dashboard to the data view
// behind one of its panel layers.
func PanelReferenceName(panelIndex, layerID string) string {
	return panelIndex + ":" + lens.LayerReferenceName(layerID)
}

func controlGroup(specs []ControlSpec) (*savedobject.ControlGroupInput, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	controls := make(map[string]control, len(specs))
	for i, cs := range specs {
		if cs.Field == "" {
			return nil, savedobject.Invalidf("control %d has no field", i)
		}
		id := cs.ID
		if id == "" {
			id = "control_" + strings.ReplaceAll(cs.Field, ".", "_")
		}
		if _, dup := controls[id]; dup {
			return nil, savedobject.Invalidf("duplicate control id %q", id)
		}
		width := orDefault(cs.Width, "medium")
		if !controlWidths[width] {
			return nil, savedobject.Invalidf("control %q: unknown width %q", id, width)
		}

		controls[id] = control{
			Order: i,
			Width: width,
			Grow:  true,
			Type:  "optionsListControl",
			ExplicitInput: explicitInput{
				ID:              id,
				FieldName:       cs.Field,
				Title:           orDefault(cs.Title, cs.Field),
				SelectedOptions: []string{},
				Placeholder:     cs.Placeholder,
			},
		}
	}

	panelsJSON, err := jsonString(controls)
	if err != nil {
		return nil, err
	}
	ignore, err := json.Marshal(ignoreParentSettings{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode control settings")
	}
	return &savedobject.ControlGroupInput{
		ChainingSystem:           "HIERARCHICAL",
		ControlStyle:             "oneLine",
		IgnoreParentSettingsJSON: string(ignore),
		PanelsJSON:               panelsJSON,
	}, nil
}
