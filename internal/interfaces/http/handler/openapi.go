package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
)

// DocReader returns the generated swagger document as JSON
type DocReader func() (string, error)

// OpenAPIHandler exports the generated schema in YAML
type OpenAPIHandler struct {
	BaseHandler
	read DocReader
}

// NewOpenAPIHandler creates a new OpenAPIHandler
func NewOpenAPIHandler(read DocReader) *OpenAPIHandler {
	return &OpenAPIHandler{read: read}
}

// YAML godoc
//
//	@ID				getSchemaYAML
//	@Summary		API schema as YAML
//	@Tags			system
//	@Produce		application/yaml
//	@Success		200	{string}	string
//	@Router			/openapi.yaml [get]
func (h *OpenAPIHandler) YAML(c *gin.Context) {
	doc, err := h.read()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out, err := JSONToYAML([]byte(doc))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", out)
}

// JSONToYAML re-encodes a JSON document as block-style YAML, keeping key order
func JSONToYAML(doc []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	resetStyle(&root)
	return yaml.Marshal(&root)
}

// resetStyle drops the flow and quoting styles the JSON parse leaves on every
// node. The encoder still quotes strings that would read back as another type.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		resetStyle(child)
	}
}
