package reports

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"lifeway-backend/internal/llm"
)

// Field is one labelled answer interpolated into a prompt.
type Field struct {
	Label string
	Value string
}

type promptData struct {
	Email   string
	Name    string
	Fields  []Field
	Profile []Field
}

var nameKeys = []string{"nome", "name", "fullName", "full_name", "nome_completo"}

func loadTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(Tools()))
	for _, tool := range Tools() {
		raw, ok := llm.PromptTemplate(tool)
		if !ok {
			return nil, fmt.Errorf("missing prompt template %s", tool)
		}
		tmpl, err := template.New(tool).Option("missingkey=zero").Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse prompt template %s: %w", tool, err)
		}
		out[tool] = tmpl
	}
	return out, nil
}

func render(tmpl *template.Template, data promptData) (llm.Prompt, error) {
	var system, user strings.Builder
	if err := tmpl.ExecuteTemplate(&system, "system", data); err != nil {
		return llm.Prompt{}, fmt.Errorf("render system prompt: %w", err)
	}
	if err := tmpl.ExecuteTemplate(&user, "user", data); err != nil {
		return llm.Prompt{}, fmt.Errorf("render user prompt: %w", err)
	}
	return llm.Prompt{System: strings.TrimSpace(system.String()), User: strings.TrimSpace(user.String())}, nil
}

func buildPromptData(email string, input, profile map[string]any) promptData {
	data := promptData{Email: email}
	skip := map[string]bool{"email": true, "user_email": true}
	for _, k := range nameKeys {
		if v, ok := input[k].(string); ok && strings.TrimSpace(v) != "" && data.Name == "" {
			data.Name = strings.TrimSpace(v)
		}
		skip[k] = true
	}
	if data.Name == "" {
		for _, k := range nameKeys {
			if v, ok := profile[k].(string); ok && strings.TrimSpace(v) != "" {
				data.Name = strings.TrimSpace(v)
				break
			}
		}
	}
	data.Fields = toFields(input, skip)
	data.Profile = toFields(profile, skip)
	return data
}

func toFields(m map[string]any, skip map[string]bool) []Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		if skip[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		v := formatValue(m[k])
		if v == "" {
			continue
		}
		out = append(out, Field{Label: humanize(k), Value: v})
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		if val {
			return "sim"
		}
		return "não"
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", val), "0"), ".")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := formatValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

// humanize turns snake_case and camelCase keys into a readable label.
func humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteByte(' ')
		case r >= 'A' && r <= 'Z' && i > 0:
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return key
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
