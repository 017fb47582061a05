package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stubBuildInfo(t *testing.T, bi *debug.BuildInfo) {
	t.Helper()
	old := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() { readBuildInfo = old })
}

func stamp(t *testing.T, v, c, d string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = v, c, d
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestGet(t *testing.T) {
	embedded := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	tests := []struct {
		name    string
		v, c, d string
		bi      *debug.BuildInfo
		want    Info
	}{
		{
			name: "unstamped without build info",
			v:    "dev", c: "none", d: "unknown",
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
		{
			name: "embedded fills unstamped",
			v:    "dev", c: "none", d: "unknown",
			bi:   embedded,
			want: Info{Version: "v0.3.1", Commit: "0123456789abcdef", Date: "2025-01-02T03:04:05Z", Modified: true},
		},
		{
			name: "stamped wins",
			v:    "v1.0.0", c: "abc", d: "2024-01-01",
			bi:   embedded,
			want: Info{Version: "v1.0.0", Commit: "abc", Date: "2024-01-01", Modified: true},
		},
		{
			name: "devel module version ignored",
			v:    "dev", c: "none", d: "unknown",
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.v, tt.c, tt.d)
			stubBuildInfo(t, tt.bi)
			got := Get()
			got.GoVersion = ""
			if got != tt.want {
				t.Errorf("Get() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	i := Info{Version: "v1.2.3", Commit: "0123456789abcdef", Date: "2025-01-02", GoVersion: "go1.24.0", Modified: true}
	if got := i.ShortCommit(); got != "0123456-dirty" {
		t.Errorf("ShortCommit() = %q, want %q", got, "0123456-dirty")
	}
	want := "v1.2.3 (0123456-dirty, built 2025-01-02, go1.24.0)"
	if got := i.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestTemplate(t *testing.T) {
	stamp(t, "v9.9.9", "none", "unknown")
	stubBuildInfo(t, nil)
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} v9.9.9 (none,") {
		t.Errorf("Template() = %q", got)
	}
}
