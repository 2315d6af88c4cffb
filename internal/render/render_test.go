package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/newhook/tasklog/internal/taskparam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, message, prefix string) *taskparam.Parameter {
	t.Helper()
	p, err := taskparam.Create(message, prefix)
	require.NoError(t, err)
	return p
}

func TestString_CompactDocument(t *testing.T) {
	params := []*taskparam.Parameter{
		create(t, "Output Property: Configuration=Debug", taskparam.OutputPropertyPrefix),
		create(t, "Output Item(s):\n    Foo.dll\n        Culture=en-US", taskparam.OutputItemsPrefix),
		create(t, "Added Item(s): Compile=", taskparam.ItemGroupIncludePrefix),
	}

	out, err := String(params, Options{})
	require.NoError(t, err)
	assert.Equal(t,
		`<Task><Configuration>Debug</Configuration>`+
			`<OutputItem><Item Include="Foo.dll"><Culture>en-US</Culture></Item></OutputItem>`+
			`<Compile/></Task>`, out)
}

func TestWrite_IndentedWithDeclaration(t *testing.T) {
	params := []*taskparam.Parameter{
		create(t, "Removed Item(s): Compile=\n    a.cs\n    b.cs", taskparam.ItemGroupRemovePrefix),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, params, Options{RootElement: "Target", Indent: 2, Declaration: true}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "<Target>\n  <Compile>\n    <Item Remove=\"a.cs\"/>\n    <Item Remove=\"b.cs\"/>\n  </Compile>\n</Target>")
}

func TestString_EscapesText(t *testing.T) {
	params := []*taskparam.Parameter{
		create(t, `Output Property: Cond='$(A)' == "<b>"`, taskparam.OutputPropertyPrefix),
	}
	out, err := String(params, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestString_NoParameters(t *testing.T) {
	out, err := String(nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "<Task/>", out)
}
