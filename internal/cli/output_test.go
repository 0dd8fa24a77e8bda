package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"result": "a<b"})
	require.NoError(t, err)

	assert.Equal(t, "{\"status\":\"ok\",\"data\":{\"result\":\"a<b\"}}\n", buf.String(), "HTML is not escaped")
}

func TestOutputFormatter_JSONIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf, Indent: true}

	require.NoError(t, formatter.Success(map[string]int{"n": 1}))
	assert.Contains(t, buf.String(), "\n  \"status\": \"ok\"")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E010", "compile failed", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E010", resp.Error.Code)
	assert.Equal(t, "compile failed", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E005", "not found", "x.json"))
	assert.Equal(t, "Error [E005]: not found\nDetails: x.json\n", buf.String())
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ExitCommandError, ErrCodeRecordsFailed, errors.New("bad records"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "Error [E009]: bad records\n", buf.String())

	buf.Reset()
	loadErr := fmt.Errorf("wrapped: %w", &LoadError{Code: ErrCodeNotFound, Message: "missing"})
	err = formatter.Fail(ExitCommandError, ErrCodeGeneric, loadErr)
	assert.Equal(t, "Error [E005]: missing\n", buf.String(), "LoadError code wins over fallback")
	assert.True(t, errors.Is(err, loadErr))
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("loaded %d", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3\n", errOut.String())

	quiet := &OutputFormatter{Writer: out}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("outer: %w", NewExitError(ExitFailure, "lint"))))
}

func TestExitError(t *testing.T) {
	cause := errors.New("cause")
	err := WrapExitError(ExitCommandError, "E009", cause)
	assert.Equal(t, "E009: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
}

func TestWriteRecords(t *testing.T) {
	buf := &bytes.Buffer{}
	records := []any{
		map[string]any{"b": 1.0, "a": "x"},
		map[string]any{"nested": map[string]any{"z": nil, "y": []any{true}}},
	}

	require.NoError(t, WriteRecords(buf, records))
	assert.Equal(t, "{\"a\":\"x\",\"b\":1}\n{\"nested\":{\"y\":[true],\"z\":null}}\n", buf.String())
}

func TestWriteRecords_Error(t *testing.T) {
	err := WriteRecords(&bytes.Buffer{}, []any{map[string]any{"n": math.NaN()}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")
}

func TestWriteRecords_UndefinedMembersOmitted(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteRecords(buf, []any{map[string]any{"u": ir.Undefined, "a": 1.0}}))
	assert.Equal(t, "{\"a\":1}\n", buf.String())
}
