package cmd_test

import (
	"testing"

	"github.com/stp-explore/ilha-server/cmd"
)

//nolint:golint,gochecknoglobals
var requiredFlags = []string{
	"--routing.api_key", "dummy",
}

func TestDefault(t *testing.T) {
	t.Parallel()
	baseCmd := cmd.NewCommand("testing", "default")
	baseCmd.SetArgs(append([]string{"--http.port", "8082", "--http.metrics.port", "8083"}, requiredFlags...))
	err := baseCmd.Execute()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
