package platform

import (
	"context"
	"runtime"
	"testing"
)

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %v, want %v", info.OS, runtime.GOOS)
	}
	if info.ArchRaw != runtime.GOARCH {
		t.Errorf("ArchRaw = %v, want %v", info.ArchRaw, runtime.GOARCH)
	}
	if info.Platform != "" && info.Family == "" {
		t.Error("Family should be set whenever Platform is set")
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"amd64", "amd64", false},
		{"x86_64", "amd64", false},
		{"arm64", "arm64", false},
		{"aarch64", "arm64", false},
		{"386", "386", false},
		{"mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeArch(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeArch(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("normalizeArch(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapFamily(t *testing.T) {
	tests := map[string]string{
		"debian":   FamilyDebian,
		" Ubuntu ": FamilyDebian,
		"rocky":    FamilyRHEL,
		"manjaro":  FamilyArch,
		"plan9":    FamilyUnknown,
	}
	for in, want := range tests {
		if got := mapFamily(in); got != want {
			t.Errorf("mapFamily(%q) = %q, want %q", in, got, want)
		}
	}
}
