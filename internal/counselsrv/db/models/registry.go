package models

// tenantOwned is the single declaration of every table partitioned by
// tenant_id. The postgresql managers resolve table names through
// ScopedTable, so a table missing from this list cannot be reached by
// any tenant-scoped query.
var tenantOwned = map[string]bool{
	"users":        true,
	"roles":        true,
	"user_roles":   true,
	"clients":      true,
	"matters":      true,
	"documents":    true,
	"tasks":        true,
	"invoices":     true,
	"time_entries": true,
}

// ScopedTable returns the table name after checking the declaration.
// An undeclared table panics at package initialization, before any
// request is served.
func ScopedTable(name string) string {
	if !tenantOwned[name] {
		panic("table not declared tenant-owned: " + name)
	}
	return name
}

// IsTenantOwned reports whether table rows are partitioned by tenant.
func IsTenantOwned(name string) bool {
	return tenantOwned[name]
}
