package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/ukombozini/backoffice/internal/testing/guard"
)

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("UKOMBOZINI_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())

	t.Setenv("UKOMBOZINI_TEST_MODE", "0")
	RefreshTestMode()
	require.False(t, InTestMode())

	t.Setenv("UKOMBOZINI_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())
}
