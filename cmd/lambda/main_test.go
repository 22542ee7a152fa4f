package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvInt(t *testing.T) {
	t.Setenv("MAX_TEXT_LENGTH", "")
	n, err := envInt("MAX_TEXT_LENGTH", 2000)
	require.NoError(t, err)
	require.Equal(t, 2000, n)

	t.Setenv("MAX_TEXT_LENGTH", " 500 ")
	n, err = envInt("MAX_TEXT_LENGTH", 2000)
	require.NoError(t, err)
	require.Equal(t, 500, n)
}

func TestEnvInt_RejectsBadValues(t *testing.T) {
	for _, v := range []string{"lots", "12abc", "0", "-3"} {
		t.Setenv("MAX_TEXT_LENGTH", v)
		_, err := envInt("MAX_TEXT_LENGTH", 2000)
		require.ErrorContains(t, err, "MAX_TEXT_LENGTH", v)
	}
}
