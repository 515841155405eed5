package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"filesystem", FileSystemError("missing").Build(), 11},
		{"inventory", InventoryError("missing").Build(), 11},
		{"template", TemplateError("missing").Build(), 11},
		{"internal", InternalError("bug").Build(), 10},
		{"runtime", NewError(CategoryRuntime, "signal").Build(), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	cause := errors.New("no such file or directory")
	err := TemplateError("template page missing").
		WithContext("path", "market.html").
		WithCause(cause).
		Build()

	quiet := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "Error: template page missing (market.html): no such file or directory", quiet.FormatError(err))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Equal(t, "Error: [template:fatal] template page missing: no such file or directory", verbose.FormatError(err))

	require.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logBuf, outBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.out = &outBuf

	code := adapter.Report(ConfigError("config invalid").WithContext("path", "lotbuilder.yaml").Build())
	require.Equal(t, 7, code)
	require.Contains(t, outBuf.String(), "config invalid (lotbuilder.yaml)")
	require.Contains(t, logBuf.String(), "category=config")
	require.Contains(t, logBuf.String(), "level=ERROR")

	logBuf.Reset()
	outBuf.Reset()
	code = adapter.Report(InjectError("marker not found").Build())
	require.Equal(t, 11, code)
	require.Empty(t, logBuf.String(), "warnings are not logged in quiet mode")
	require.Contains(t, outBuf.String(), "marker not found")
}
