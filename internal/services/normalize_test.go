package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain object", input: `{"a": 1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", input: "\n\n  {\"a\": 1}  \n", want: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\": 1}\n```", want: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\": 1}\n```", want: `{"a":1}`},
		{name: "uppercase lang", input: "```JSON\n{\"a\": [1, 2]}\n```", want: `{"a":[1,2]}`},
		{name: "fence on one line", input: "```{\"a\": 1}```", want: `{"a":1}`},
		{name: "leading prose", input: "Here is the result:\n{\"a\": 1}", want: `{"a":1}`},
		{name: "trailing prose", input: "{\"a\": {\"b\": 2}}\nLet me know if you need more.", want: `{"a":{"b":2}}`},
		{name: "braces inside strings", input: `Sure! {"a": "}{"} done`, want: `{"a":"}{"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestNormalizeJSON_Failures(t *testing.T) {
	inputs := []string{
		"",
		"I cannot help with that.",
		`["not", "an", "object"]`,
		"```json\n{\"a\": \n```",
		`{"a": 1`,
	}

	for _, input := range inputs {
		_, err := NormalizeJSON([]byte(input))
		assert.True(t, errors.Is(err, ErrUnparseablePayload), "input %q", input)
	}
}
