// Package blueprint reads dashboards declared in YAML.
//
// A blueprint lists data views and dashboards; panels and columns use the
// same vocabulary as package lens:
//
//	data_views:
//	  - id: k8s-audit
//	    title: k8s-audit-*
//	    name: Kubernetes audit
//	dashboards:
//	  - id: audit-overview
//	    title: Audit overview
//	    controls:
//	      - field: kubernetes.namespace
//	        placeholder: All namespaces
//	    panels:
//	      - kind: table
//	        title: Top users
//	        data_view: k8s-audit
//	        grid: {x: 0, y: 0, w: 48, h: 15}
//	        columns:
//	          - {label: User, field: user.name, size: 20}
//	          - {label: Events}
//
// Panels without an id get one derived from the dashboard id, the panel's
// position and its title, so regenerating an unchanged blueprint produces an
// identical export.
package blueprint
