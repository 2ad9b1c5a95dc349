// Package dashboard builds index-pattern and dashboard saved objects.
//
// Builders are pure: they validate their input and return typed objects
// without touching the filesystem. Validation failures are marked with
// savedobject.ErrInvalidConfig. Dashboards embed their lens panels in
// panelsJSON and derive one index-pattern reference per panel, named
// "<panelIndex>:indexpattern-datasource-layer-<layer>".
package dashboard
