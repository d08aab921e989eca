package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"456789", 456789, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

const playerXML = `<HattrickData>
  <Player>
    <PlayerID>480742036</PlayerID>
    <FirstName>Jan</FirstName>
    <LastName>Novak</LastName>
    <PlayerSkills>
      <ScorerSkill>7</ScorerSkill>
      <KeeperSkill>1</KeeperSkill>
    </PlayerSkills>
  </Player>
</HattrickData>`

// setupCLI points the commands at a fake CHPP server and captures stdout.
func setupCLI(t *testing.T) *bytes.Buffer {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("file") != "playerdetails" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, playerXML)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("CHPP_CONSUMER_KEY", "consumer-key")
	t.Setenv("CHPP_CONSUMER_SECRET", "consumer-secret")
	t.Setenv("CHPP_ACCESS_KEY", "access-key")
	t.Setenv("CHPP_ACCESS_SECRET", "access-secret")
	t.Setenv("CHPP_BASE_URL", srv.URL+"/chppxml.ashx")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("ENVIRONMENT", "development")

	var out bytes.Buffer
	prev := stdout
	stdout = &out
	t.Cleanup(func() { stdout = prev })
	return &out
}

func TestPlayerCmdField(t *testing.T) {
	out := setupCLI(t)

	cmd := playerCmd()
	cmd.SetArgs([]string{"480742036", "--field", "scorer", "--field", "id"})
	require.NoError(t, cmd.Execute())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]any{"scorer": float64(7), "id": float64(480742036)}, got)
}

func TestPlayerCmdUnknownField(t *testing.T) {
	out := setupCLI(t)

	cmd := playerCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"480742036", "--field", "shooting"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown player field "shooting"`)
	assert.Contains(t, err.Error(), "scorer")
	assert.Empty(t, out.String())
}
