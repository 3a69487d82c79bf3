package workflow

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maestro/hello-world-dag/internal/domain"
)

type Parser struct {
	validator *Validator
}

func NewParser(operators OperatorLookup) *Parser {
	return &Parser{
		validator: NewValidator(operators),
	}
}

func (p *Parser) ParseFile(filename string) (*domain.Workflow, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	return p.Parse(data)
}

func (p *Parser) Parse(data []byte) (*domain.Workflow, error) {
	var wf domain.Workflow

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&wf); err != nil {
		return nil, fmt.Errorf("failed to parse workflow YAML: %w", err)
	}

	if err := p.validator.Validate(&wf); err != nil {
		return nil, fmt.Errorf("workflow validation failed: %w", err)
	}

	return &wf, nil
}
