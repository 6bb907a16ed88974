package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringContainsAllBuildFields(t *testing.T) {
	s := String()
	require.Contains(t, s, "voxpad ")
	require.Contains(t, s, Version)
	require.Contains(t, s, "commit="+Commit)
	require.Contains(t, s, "date="+Date)
	require.Contains(t, s, "go=go")
}
