package envpath

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		value string
		sep   string
		want  []string
	}{
		{"empty", "", ";", nil},
		{"single", `C:\bin`, ";", []string{`C:\bin`}},
		{"drops empty elements", `;C:\a;;C:\b;`, ";", []string{`C:\a`, `C:\b`}},
		{"colon", "/usr/bin::/bin", ":", []string{"/usr/bin", "/bin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.value, tt.sep); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	list := []string{`C:\Windows`, `C:\ffmpeg\`, "/opt/ffmpeg/bin"}

	tests := []struct {
		dir  string
		fold bool
		want bool
	}{
		{`C:\ffmpeg`, false, true},
		{`c:\FFMPEG`, true, true},
		{`c:\FFMPEG`, false, false},
		{"/opt/ffmpeg/bin/", false, true},
		{"/opt/ffmpeg", false, false},
		{`C:\`, true, false},
	}

	for _, tt := range tests {
		if got := Contains(list, tt.dir, tt.fold); got != tt.want {
			t.Errorf("Contains(%q, fold=%v) = %v, want %v", tt.dir, tt.fold, got, tt.want)
		}
	}
}

func TestNormalizeEntry_DriveRoot(t *testing.T) {
	if got := normalizeEntry(`C:\`, true); got != `c:\` {
		t.Errorf(`normalizeEntry(C:\) = %q, want c:\`, got)
	}
	if got := normalizeEntry("/", false); got != "/" {
		t.Errorf("normalizeEntry(/) = %q, want /", got)
	}
}

func TestAppendAndRemove(t *testing.T) {
	list := []string{"/a", "/b"}

	list = Append(list, "/c", false)
	list = Append(list, "/c/", false)
	if want := []string{"/a", "/b", "/c"}; !reflect.DeepEqual(list, want) {
		t.Errorf("Append = %v, want %v", list, want)
	}

	list = Remove(list, "/b", false)
	if want := []string{"/a", "/c"}; !reflect.DeepEqual(list, want) {
		t.Errorf("Remove = %v, want %v", list, want)
	}

	if got := Join(list, ":"); got != "/a:/c" {
		t.Errorf("Join = %q", got)
	}
}
