package handler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBasicAuthenticatorAccepts(t *testing.T) {
	a := NewBasicAuthenticator("myUser", "myPassword")
	require.True(t, a.Accepts("Basic bXlVc2VyOm15UGFzc3dvcmQ="))
}

func TestBasicAuthenticatorRejectsWrongCredentials(t *testing.T) {
	a := NewBasicAuthenticator("myUser", "myPassword")
	require.False(t, a.Accepts("Basic AAAA"))
}

func TestBasicAuthenticatorRejectsMissingScheme(t *testing.T) {
	a := NewBasicAuthenticator("myUser", "myPassword")
	require.False(t, a.Accepts("bXlVc2VyOm15UGFzc3dvcmQ="))
}

func TestBasicAuthenticatorRejectsWrongScheme(t *testing.T) {
	a := NewBasicAuthenticator("myUser", "myPassword")
	require.False(t, a.Accepts("Bearer bXlVc2VyOm15UGFzc3dvcmQ="))
}
