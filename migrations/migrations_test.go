package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamesAreOrdered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_notify.sql"}, names)
}

func TestRenderLeavesNoPlaceholders(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)

	for _, name := range names {
		body, err := files.ReadFile(name)
		require.NoError(t, err)

		sql := Render(string(body), "club")
		assert.NotContains(t, sql, "{{schema}}", name)
		assert.True(t, strings.Contains(sql, `"club".`), name)
	}
}

func TestNotifyTriggerUsesListenerChannel(t *testing.T) {
	body, err := files.ReadFile("002_notify.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "pg_notify('"+NotifyChannel+"'")
}
