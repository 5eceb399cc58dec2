package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type document struct {
	BasePath    string                                `json:"basePath"`
	Paths       map[string]map[string]json.RawMessage `json:"paths"`
	Definitions map[string]struct {
		Properties map[string]map[string]interface{} `json:"properties"`
	} `json:"definitions"`
}

func readDocument(t *testing.T) document {
	t.Helper()
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestSwaggerDoc_MatchesRequestTypes(t *testing.T) {
	doc := readDocument(t)
	assert.Equal(t, "/api", doc.BasePath)

	for _, def := range []string{"handler.CreateUserRequest", "handler.UpdateUserRequest"} {
		password := doc.Definitions[def].Properties["password"]
		assert.EqualValues(t, 8, password["minLength"], def)
		assert.EqualValues(t, 72, password["maxLength"], def)
	}

	claims := doc.Definitions["handler.MeResponse"].Properties["claims"]
	assert.Equal(t, "#/definitions/auth.Claims", claims["$ref"])
	assert.Contains(t, doc.Definitions["auth.Claims"].Properties, "uid")
	assert.Contains(t, doc.Definitions["auth.Claims"].Properties, "typ")
}
