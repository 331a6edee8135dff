package encoding

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Name  string `json:"name" yaml:"name"`
	Turns int    `json:"turns" yaml:"turns"`
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"JSON": JSON, "yml": YAML, " text ": Text} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.False(t, Text.Structured())
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, report{"mage", 3}))
	assert.JSONEq(t, `{"name":"mage","turns":3}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, YAML, report{"mage", 3}))
	assert.YAMLEq(t, "name: mage\nturns: 3\n", buf.String())

	assert.Error(t, Write(&buf, Text, report{}))
}
