package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/key-collection/internal/app"
	"github.com/MKhiriev/key-collection/internal/logger"
	"github.com/MKhiriev/key-collection/internal/service"
)

func TestRun_NoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "usage:")
	assert.Empty(t, stdout.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"frobnicate"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), `unknown command "frobnicate"`)
}

func TestRun_Version(t *testing.T) {
	buildVersion, buildDate, buildCommit = "v1.2.3", "", "abc"
	t.Cleanup(func() { buildVersion, buildDate, buildCommit = "", "", "" })

	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "Build version: v1.2.3\nBuild date: N/A\nBuild commit: abc\n", stdout.String())
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"list", "-no-such-flag"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "error getting configs")
}

func TestExitCode(t *testing.T) {
	quorumErr := &service.QuorumTimeoutError{MinPeers: 2, PeerCount: 1, Elapsed: time.Second}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"quorum timeout", quorumErr, exitFailure},
		{"wrapped quorum timeout", fmt.Errorf("list: %w", quorumErr), exitFailure},
		{"interrupted", context.Canceled, exitFailure},
		{"missing argument", fmt.Errorf("%w: list <key>", app.ErrMissingArgument), exitUsage},
		{"other", errors.New("boom"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err, logger.Nop()))
		})
	}
}
