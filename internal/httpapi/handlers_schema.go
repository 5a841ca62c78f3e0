package httpapi

import (
	"net/http"
	"reflect"
	"sync"

	"github.com/casualjim/hoot/protocol"
	json "github.com/goccy/go-json"
	"github.com/invopop/jsonschema"
)

var rawMessageType = reflect.TypeOf(json.RawMessage{})

var inputSchema = sync.OnceValue(func() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			// free-form JSON
			if t == rawMessageType {
				return &jsonschema.Schema{}
			}
			return nil
		},
	}
	s := r.Reflect(&protocol.RunAgentInput{})
	s.Title = "RunAgentInput"
	return s
})

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, inputSchema())
}
