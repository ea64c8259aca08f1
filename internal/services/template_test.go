package services

import (
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		vars     map[string]string
		expected string
	}{
		{
			"simple substitution",
			"Hello {{name}}!",
			map[string]string{"name": "Budi"},
			"Hello Budi!",
		},
		{
			"whitespace inside braces",
			"Hello {{ name }}, your number is {{  phone }}",
			map[string]string{"name": "Budi", "phone": "628111"},
			"Hello Budi, your number is 628111",
		},
		{
			"unknown placeholder left intact",
			"Hello {{name}}, code {{code}}",
			map[string]string{"name": "Budi"},
			"Hello Budi, code {{code}}",
		},
		{
			"repeated placeholder",
			"{{name}} {{name}}",
			map[string]string{"name": "x"},
			"x x",
		},
		{
			"no placeholders",
			"plain text",
			map[string]string{"name": "Budi"},
			"plain text",
		},
		{
			"nil vars",
			"Hello {{name}}",
			nil,
			"Hello {{name}}",
		},
	}

	for _, test := range tests {
		if got := RenderTemplate(test.content, test.vars); got != test.expected {
			t.Errorf("%s: RenderTemplate = %q, expected %q", test.name, got, test.expected)
		}
	}
}

func TestExtractTemplateVariables(t *testing.T) {
	tests := []struct {
		content  string
		expected []string
	}{
		{"Hello {{name}}, order {{order_id}} for {{name}}", []string{"name", "order_id"}},
		{"no vars here", nil},
		{"{{ a }}{{b}}{{ c}}", []string{"a", "b", "c"}},
	}

	for _, test := range tests {
		got := ExtractTemplateVariables(test.content)
		if len(got) != len(test.expected) {
			t.Errorf("ExtractTemplateVariables(%q) = %v, expected %v", test.content, got, test.expected)
			continue
		}
		for i := range got {
			if got[i] != test.expected[i] {
				t.Errorf("ExtractTemplateVariables(%q)[%d] = %q, expected %q", test.content, i, got[i], test.expected[i])
			}
		}
	}
}
