package versioning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuild_String(t *testing.T) {
	t.Parallel()

	b := Build{Version: "v0.2.0", Commit: "8f2c41d9e0b7a3"}
	require.Equal(t, "zenith/v0.2.0-8f2c41d", b.String())

	b = Build{Version: unknown, Commit: unknown}
	require.Equal(t, "zenith/unknown-unknown", b.String())
}

func TestOrUnknown(t *testing.T) {
	t.Parallel()

	require.Equal(t, unknown, orUnknown(""))
	require.Equal(t, "main", orUnknown("main"))
}
