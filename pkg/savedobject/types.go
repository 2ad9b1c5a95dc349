package savedobject

// Type is the saved-object type discriminator.
type Type string

const (
	IndexPatternType Type = "index-pattern"
	DashboardType    Type = "dashboard"
	LensType         Type = "lens"
)

// Reference points from one saved object to another by id.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Object is a saved object with typed attributes. The bookkeeping fields are
// opaque strings passed through to Kibana.
type Object[A any] struct {
	Attributes           A           `json:"attributes"`
	CoreMigrationVersion string      `json:"coreMigrationVersion"`
	CreatedAt            string      `json:"created_at"`
	ID                   string      `json:"id"`
	Managed              bool        `json:"managed"`
	References           []Reference `json:"references"`
	Type                 Type        `json:"type"`
	TypeMigrationVersion string      `json:"typeMigrationVersion"`
	UpdatedAt            string      `json:"updated_at"`
	Version              string      `json:"version"`
}

// Record encodes the object as one export line.
func (o Object[A]) Record() (Record, error) {
	return Encode(o)
}

type (
	// Dashboard is a dashboard saved object.
	Dashboard = Object[DashboardAttributes]

	// IndexPattern is a data view saved object.
	IndexPattern = Object[IndexPatternAttributes]
)

// IndexPatternAttributes are the attributes of a data view. The *Map/*JSON
// style fields are JSON documents encoded as strings.
type IndexPatternAttributes struct {
	FieldAttrs      string `json:"fieldAttrs"`
	FieldFormatMap  string `json:"fieldFormatMap"`
	Fields          string `json:"fields"`
	Name            string `json:"name"`
	RuntimeFieldMap string `json:"runtimeFieldMap"`
	SourceFilters   string `json:"sourceFilters"`
	TimeFieldName   string `json:"timeFieldName"`
	Title           string `json:"title"`
	TypeMeta        string `json:"typeMeta"`
}

// DashboardAttributes are the attributes of a dashboard. PanelsJSON and
// OptionsJSON hold JSON documents encoded as strings, as Kibana stores them.
type DashboardAttributes struct {
	ControlGroupInput     *ControlGroupInput `json:"controlGroupInput,omitempty"`
	Description           string             `json:"description"`
	KibanaSavedObjectMeta SavedObjectMeta    `json:"kibanaSavedObjectMeta"`
	OptionsJSON           string             `json:"optionsJSON"`
	PanelsJSON            string             `json:"panelsJSON"`
	TimeRestore           bool               `json:"timeRestore"`
	TimeFrom              string             `json:"timeFrom"`
	TimeTo                string             `json:"timeTo"`
	Title                 string             `json:"title"`
	Version               int                `json:"version"`
}

// SavedObjectMeta carries the dashboard-level search source.
type SavedObjectMeta struct {
	SearchSourceJSON string `json:"searchSourceJSON"`
}

// ControlGroupInput holds the dashboard controls (filters shown above the panels).
type ControlGroupInput struct {
	ChainingSystem           string `json:"chainingSystem"`
	ControlStyle             string `json:"controlStyle"`
	IgnoreParentSettingsJSON string `json:"ignoreParentSettingsJSON"`
	PanelsJSON               string `json:"panelsJSON"`
}
