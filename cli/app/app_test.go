package app

import (
	"bytes"
	"testing"

	"github.com/nspcc-dev/dagnotify/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	ctl := New()
	require.Equal(t, "dagnode", ctl.Name)
	require.NotNil(t, ctl.Command("node"))
}

func TestVersion(t *testing.T) {
	config.Version = "0.1.0-test"
	t.Cleanup(func() { config.Version = "" })

	ctl := New()
	buf := new(bytes.Buffer)
	ctl.Writer = buf
	require.NoError(t, ctl.Run([]string{"dagnode", "--version"}))
	require.Contains(t, buf.String(), "Version: 0.1.0-test")
	require.Contains(t, buf.String(), "GoVersion: ")
}
