package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/authorizer"
)

func TestBuildCall(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    entity.Call
		wantErr bool
	}{
		{
			name: "initialize",
			args: []string{"initialize", "GADMIN", "USDC"},
			want: entity.NewCall(entity.OpInitialize, "GADMIN", "USDC"),
		},
		{
			name: "deposit normalizes amount",
			args: []string{"deposit", "GUSER", "100.0"},
			want: entity.NewCall(entity.OpDeposit, "GUSER", "100"),
		},
		{
			name:    "unknown operation",
			args:    []string{"mint", "GUSER", "1"},
			wantErr: true,
		},
		{
			name:    "wrong arity",
			args:    []string{"withdraw", "GUSER"},
			wantErr: true,
		},
		{
			name:    "bad amount",
			args:    []string{"withdraw", "GUSER", "lots"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildCall(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"sign", "deposit", "GUSER", "100", "--principal", "GUSER", "--secret", "s3cret"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	headers := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		k, v, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		headers[k] = v
	}

	call := entity.NewCall(entity.OpDeposit, "GUSER", "100")
	assert.Equal(t,
		authorizer.Sign("s3cret", "GUSER", call, headers["X-Timestamp"], headers["X-Nonce"]),
		headers["X-Signature"])
}
