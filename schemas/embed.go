// Package schemas embeds the JSON Schemas shipped with autopost.
package schemas

import "embed"

// Schema file names
const (
	ConfigSchema  = "config.schema.json"
	PayloadSchema = "payload.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the named schema document.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists every embedded schema.
func Names() []string {
	return []string{ConfigSchema, PayloadSchema}
}
