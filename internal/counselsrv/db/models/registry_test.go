package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopedTableDeclared(t *testing.T) {
	for _, table := range []string{
		"users", "roles", "user_roles", "clients", "matters",
		"documents", "tasks", "invoices", "time_entries",
	} {
		assert.Equal(t, table, ScopedTable(table))
		assert.True(t, IsTenantOwned(table))
	}
}

func TestScopedTableUndeclaredPanics(t *testing.T) {
	assert.Panics(t, func() { ScopedTable("tenants") })
	assert.False(t, IsTenantOwned("tenants"))
}
