package contract

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation identifiers of the consumed API.
const (
	OpListBorrowers  = "listBorrowers"
	OpCreateBorrower = "createBorrower"
	OpApplyForLoan   = "applyForLoan"
	OpPing           = "ping"
)

//go:embed openapi.yaml
var document []byte

// Raw returns the embedded OpenAPI document.
func Raw() []byte {
	out := make([]byte, len(document))
	copy(out, document)
	return out
}

// Operation is one API operation as described by the document.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string

	request *openapi3.SchemaRef
}

// HasRequestBody reports whether the operation declares a JSON body.
func (o Operation) HasRequestBody() bool {
	return o.request != nil && o.request.Value != nil
}

// Contract holds the parsed document keyed by operationId.
type Contract struct {
	doc *openapi3.T
	ops map[string]Operation
}

var (
	defaultOnce     sync.Once
	defaultContract *Contract
	defaultErr      error
)

// Default parses the embedded document once.
func Default() (*Contract, error) {
	defaultOnce.Do(func() {
		defaultContract, defaultErr = Parse(context.Background(), document)
	})
	return defaultContract, defaultErr
}

// Parse loads and validates an OpenAPI document.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	if len(raw) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{doc: doc, ops: make(map[string]Operation)}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			c.collect(method, path, op)
		}
	}
	if len(c.ops) == 0 {
		return nil, errors.New("contract: no operations extracted")
	}
	return c, nil
}

func (c *Contract) collect(method, path string, op *openapi3.Operation) {
	if op == nil {
		return
	}
	id := op.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	c.ops[id] = Operation{
		ID:      id,
		Method:  strings.ToUpper(method),
		Path:    path,
		Summary: op.Summary,
		request: jsonRequestSchema(op.RequestBody),
	}
}

func jsonRequestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	mt, ok := body.Value.Content["application/json"]
	if !ok || mt == nil {
		return nil
	}
	return mt.Schema
}

// Operation returns the operation registered under id.
func (c *Contract) Operation(id string) (Operation, bool) {
	op, ok := c.ops[id]
	return op, ok
}

// Operations lists operation ids in sorted order.
func (c *Contract) Operations() []string {
	ids := make([]string, 0, len(c.ops))
	for id := range c.ops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Title is the document title.
func (c *Contract) Title() string {
	if c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// ValidateRequest checks payload against the JSON request body schema of the
// operation. Payload is encoded to JSON first so struct tags apply.
func (c *Contract) ValidateRequest(ctx context.Context, operationID string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	op, ok := c.ops[operationID]
	if !ok {
		return fmt.Errorf("contract: unknown operation %q", operationID)
	}
	if !op.HasRequestBody() {
		return fmt.Errorf("contract: operation %q has no JSON request body", operationID)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("contract: encode %s payload: %w", operationID, err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("contract: decode %s payload: %w", operationID, err)
	}

	if err := op.request.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		return newViolation(operationID, err)
	}
	return nil
}
