package predict

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// schema names, one file each under schemas/
const (
	schemaAssessRequest  = "assess_request"
	schemaAssessResponse = "assess_response"
	schemaThyroid        = "thyroid_response"
	schemaLung           = "lung_response"
	schemaBrain          = "brain_response"
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{schemaAssessRequest, schemaAssessResponse, schemaThyroid, schemaLung, schemaBrain}
		for _, name := range names {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				schemasErr = err
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				schemasErr = fmt.Errorf("parse schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(name+".json", doc); err != nil {
				schemasErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		compiled := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := c.Compile(name + ".json")
			if err != nil {
				schemasErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
		schemas = compiled
	})
	return schemas, schemasErr
}

// validate checks raw JSON against the named schema.
func validate(name string, raw []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	return all[name].Validate(doc)
}
