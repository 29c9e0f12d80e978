package llm

import "embed"

//go:embed prompts/*.tmpl
var promptFS embed.FS

// PromptTemplate returns the embedded template for name and whether it exists.
func PromptTemplate(name string) (string, bool) {
	raw, err := promptFS.ReadFile("prompts/" + name + ".tmpl")
	if err != nil {
		return "", false
	}
	return string(raw), true
}
