package main

import (
	"errors"
	"io"
	"testing"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/fetch"
)

func TestParseRestoreFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    RestoreFlags
		wantErr error
	}{
		{name: "no flags", args: nil},
		{name: "dry run", args: []string{"--dry-run"}, want: RestoreFlags{dryRun: true}},
		{name: "help", args: []string{"-h"}, wantErr: errHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags, err := parseRestoreFlags(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parseRestoreFlags() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && *flags != tt.want {
				t.Errorf("parseRestoreFlags() = %+v, want %+v", *flags, tt.want)
			}
		})
	}

	if _, err := parseRestoreFlags([]string{"--force"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestBarProgress(t *testing.T) {
	var _ fetch.Progress = (*barProgress)(nil)

	for _, total := range []int64{1024, -1} {
		p := newBarProgress(io.Discard)
		p.Start(total)
		p.Add(512)
		p.Add(512)
		p.Finish()
		if p.bar != nil {
			t.Errorf("total %d: bar should be released after Finish", total)
		}
	}

	// Add and Finish before Start are no-ops.
	p := newBarProgress(io.Discard)
	p.Add(10)
	p.Finish()
}
