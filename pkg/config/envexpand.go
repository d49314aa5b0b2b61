package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands environment variables in YAML content using Go templates.
// Uses {{.VAR_NAME}} syntax so that literal $ in values (secrets, URLs with
// query strings) is never touched.
//
// Examples:
//   - base_url: "{{.UPSTREAM_URL}}" → value of UPSTREAM_URL
//   - base_url: "http://{{.UPSTREAM_HOST}}:{{.UPSTREAM_PORT}}"
//
// Missing variables expand to empty string. Content that is not a valid
// template is returned unchanged so the YAML parser reports the real problem.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, environMap()); err != nil {
		return data
	}

	return buf.Bytes()
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok && key != "" {
			env[key] = value
		}
	}
	return env
}
