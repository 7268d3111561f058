package persona

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/autopost/internal/types"
)

// Load reads and validates a persona YAML file rooted at "character:".
func Load(path string) (*types.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read persona file", Cause: err}
	}
	p, err := Parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	return p, nil
}

// Parse decodes and validates persona YAML. Unknown keys are rejected.
func Parse(data []byte) (*types.Persona, error) {
	var file types.PersonaFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Message: "persona file is empty"}
		}
		return nil, &LoadError{Message: "invalid persona YAML", Cause: err}
	}

	p := file.Character
	if err := p.Validate(); err != nil {
		return nil, &LoadError{Message: "persona failed validation", Cause: err}
	}
	return &p, nil
}

// Describe returns a one-line summary for logs and CLI output.
func Describe(p *types.Persona) string {
	return fmt.Sprintf("%s (%s, %s)", p.Name, p.Tone, p.KnowledgeLevel)
}
