package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gridstorm/internal/column"
)

const upperScript = `
function validate(value, rule)
  if rule.type == "code" then
    if #value ~= 3 then
      return { ok = false, msg = "Code must have 3 letters" }
    end
    return { ok = true, reformatted = true, reformatted_value = string.upper(value) }
  end
  if rule.name == "veto" then
    return false, "vetoed"
  end
  if rule.name == "broken" then
    error("boom")
  end
  return true
end
`

func TestLuaValidate(t *testing.T) {
	v, err := NewLuaString(upperScript)
	require.NoError(t, err)
	defer v.Close()

	r := v.Validate("abc", column.Rule{Type: "code"})
	assert.True(t, r.OK)
	assert.Equal(t, "ABC", r.Final("abc"))

	r = v.Validate("abcd", column.Rule{Type: "code"})
	assert.False(t, r.OK)
	assert.Equal(t, "Code must have 3 letters", r.Msg)

	r = v.Validate("x", column.Rule{Name: "veto", Type: column.TypeText})
	assert.False(t, r.OK)
	assert.Equal(t, "vetoed", r.Msg)

	r = v.Validate("x", column.Rule{Name: "broken", Type: column.TypeText})
	assert.False(t, r.OK)

	r = v.Func()("plain", column.Default())
	assert.True(t, r.OK)
	assert.False(t, r.Reformatted)
}

func TestLuaFallback(t *testing.T) {
	v, err := NewLuaString(upperScript, WithFallback(NewBuiltin().Func()))
	require.NoError(t, err)
	defer v.Close()

	r := v.Validate("1,5", column.Rule{Type: column.TypeNumber})
	assert.True(t, r.OK)
	assert.Equal(t, "1.5", r.Final("1,5"), "builtin reformatting survives the script")

	r = v.Validate("abc", column.Rule{Type: column.TypeNumber})
	assert.False(t, r.OK)
	assert.Equal(t, MsgNotNumber, r.Msg)
}

func TestLuaLoadErrors(t *testing.T) {
	_, err := NewLuaString(`x = 1`)
	assert.Error(t, err, "script without validate")

	_, err = NewLuaString(`function (`)
	assert.Error(t, err)

	_, err = NewLua(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "ok.lua")
	require.NoError(t, os.WriteFile(path, []byte(upperScript), 0o644))
	v, err := NewLua(path)
	require.NoError(t, err)
	v.Close()
}
