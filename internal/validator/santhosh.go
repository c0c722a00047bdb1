package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// NewSanthoshCompiler returns a Compiler backed by santhosh-tekuri/jsonschema.
// Schemas without a $schema keyword are treated as Draft 7, and the format
// keyword is asserted rather than only annotated.
func NewSanthoshCompiler() Compiler {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	c.AssertFormat()
	return &santhoshCompiler{c: c}
}

type santhoshCompiler struct {
	mu sync.Mutex
	c  *jsonschema.Compiler
}

func (s *santhoshCompiler) AddSchema(id string, schemaData JSONSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AddResource(id, schemaData)
}

func (s *santhoshCompiler) Compile(id string) (Validator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sch, err := s.c.Compile(id)
	if err != nil {
		return nil, err
	}
	return &santhoshValidator{schema: sch}, nil
}

type santhoshValidator struct {
	schema *jsonschema.Schema
}

// Validate reports every leaf failure as a single ViolationsError.
func (sv *santhoshValidator) Validate(doc JSONDocument) error {
	err := sv.schema.Validate(doc)
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	var violations []Violation
	collectViolations(ve.BasicOutput(), &violations)
	if len(violations) == 0 {
		return err
	}
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Location < violations[j].Location
	})
	return &ViolationsError{Violations: violations}
}

func collectViolations(unit *jsonschema.OutputUnit, out *[]Violation) {
	if unit == nil {
		return
	}
	if len(unit.Errors) == 0 && unit.Error != nil {
		*out = append(*out, Violation{Location: unit.InstanceLocation, Message: unit.Error.String()})
		return
	}
	for i := range unit.Errors {
		collectViolations(&unit.Errors[i], out)
	}
}

// Violation is one way a document fails its schema.
type Violation struct {
	// Location is the JSON pointer of the offending value; empty for the root.
	Location string
	Message  string
}

func (v Violation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// ViolationsError lists every violation found in a document.
type ViolationsError struct {
	Violations []Violation
}

func (e *ViolationsError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}
