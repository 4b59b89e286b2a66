package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type operation struct {
	Responses map[string]struct {
		Description string `json:"description"`
	} `json:"responses"`
}

func readPaths(t *testing.T) map[string]map[string]operation {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]operation `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc.Paths
}

func TestLoginRejectionsAreDocumented(t *testing.T) {
	paths := readPaths(t)

	for _, p := range []string{
		"/api/auth/google/login",
		"/api/auth/google/login-access-token",
		"/api/auth/google/exchange-code",
	} {
		op, ok := paths[p]["post"]
		require.True(t, ok, p)
		assert.Contains(t, op.Responses["401"].Description, "unverified Google email", p)
		assert.Contains(t, op.Responses["401"].Description, "/register", p)
		assert.Contains(t, op.Responses["403"].Description, "locked", p)
	}
}

func TestCurrentUserIsDocumented(t *testing.T) {
	op, ok := readPaths(t)["/api/auth/me"]["get"]
	require.True(t, ok)
	assert.Contains(t, op.Responses, "200")
	assert.Contains(t, op.Responses, "401")
}
