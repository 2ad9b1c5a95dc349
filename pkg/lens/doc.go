// Package lens builds Kibana Lens panels for dashboards.
//
// A PanelSpec names a grid rectangle, a KQL query and an ordered list of
// columns. Build turns it into the nested panel structure Kibana stores in a
// dashboard's panelsJSON:
//
//	panel := lens.PanelSpec{
//	    ID:    "vuln-by-namespace",
//	    Kind:  lens.Table,
//	    Title: "Vulnerabilities by namespace",
//	    Grid:  lens.Grid{X: 0, Y: 0, W: 24, H: 15},
//	    Query: `event.dataset: "trivy.vulnerability"`,
//	    Columns: []lens.ColumnSpec{
//	        {Label: "Namespace", Field: "kubernetes.namespace", Agg: lens.Terms, Size: 50},
//	        {Label: "Count", Agg: lens.Count},
//	    },
//	}
//
// Every panel has a single data layer. Column ids default to col1..colN and
// columnOrder always follows the order the columns were given. Terms columns
// sort by a count column of the same layer.
//
// Panels are never exported on their own; package dashboard embeds them.
package lens
