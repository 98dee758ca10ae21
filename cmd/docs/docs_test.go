package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/ebank_backoffice/cmd/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath    string                                `json:"basePath"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/auth/login")
	assert.Contains(t, doc.Paths["/auth/password"], "put")
	assert.Contains(t, doc.Paths["/agent/transactions/{id}/verify"], "put")
	assert.Contains(t, doc.Paths["/client/crypto/buy-from-main"], "post")
	assert.Contains(t, doc.Definitions, "dto.TransactionResponse")
	assert.Contains(t, doc.Definitions, "handlers.ErrorResponse")
}
