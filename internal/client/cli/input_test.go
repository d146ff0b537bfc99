package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseMetadata(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	meta, expires, err := parseMetadata([]string{"project=apollo", "owner=ops=team", "expires_in=2h"}, at)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"project": "apollo", "owner": "ops=team"}, meta)
	require.NotNil(t, expires)
	assert.Equal(t, at.Add(2*time.Hour), *expires)

	meta, expires, err = parseMetadata(nil, at)
	require.NoError(t, err)
	assert.Nil(t, meta)
	assert.Nil(t, expires)

	for _, bad := range [][]string{{"novalue"}, {"=x"}, {"expires_in=soon"}, {"expires_in=-1h"}} {
		_, _, err := parseMetadata(bad, at)
		assert.Error(t, err, bad)
	}
}

func TestParseTarget(t *testing.T) {
	assert.Equal(t, services.PrincipalRef{ID: "u2"}, parseTarget("id:u2"))
	assert.Equal(t, services.PrincipalRef{Email: "bob@example.com"}, parseTarget("bob@example.com"))
	assert.Equal(t, services.PrincipalRef{Username: "bob"}, parseTarget("bob"))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "DataLoss: integrity check failed", describe(status.Error(codes.DataLoss, "integrity check failed")))
	assert.Equal(t, "plain", describe(errors.New("plain")))
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{nil, nil},
		{[]string{"-a", "host:1", "-timeout", "5s"}, nil},
		{[]string{"-a", "host:1", "list"}, []string{"list"}},
		{[]string{"-c=cfg.json", "download", "abc", "out.bin"}, []string{"download", "abc", "out.bin"}},
		{[]string{"-config", "cfg.json", "share", "abc", "-x"}, []string{"share", "abc", "-x"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CommandArgs(tt.args), tt.args)
	}
}
