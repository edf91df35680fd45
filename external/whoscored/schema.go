package whoscored

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed match_payload.schema.json
var matchPayloadSchemaJSON string

const matchPayloadSchemaName = "match_payload.schema.json"

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource(matchPayloadSchemaName, strings.NewReader(matchPayloadSchemaJSON)); err != nil {
			compiledSchemaErr = crerr.Wrap(err, "add match payload schema")
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile(matchPayloadSchemaName)
	})
	return compiledSchema, compiledSchemaErr
}

// validatePayload checks the quoted payload against the match centre schema.
func validatePayload(payload []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	var value any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return layoutChanged("payload is not JSON: %v", err)
	}
	if err := schema.Validate(value); err != nil {
		return layoutChanged("payload does not match schema: %v", err)
	}
	return nil
}
