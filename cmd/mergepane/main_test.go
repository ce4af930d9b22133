package main

import (
	"runtime/debug"
	"testing"
)

func TestVersionStringOverride(t *testing.T) {
	old := version
	version = "v1.2.3"
	t.Cleanup(func() {
		version = old
	})

	if got := versionString(); got != "v1.2.3" {
		t.Fatalf("versionString() = %q, want %q", got, "v1.2.3")
	}
}

func TestBuildVersion(t *testing.T) {
	tests := []struct {
		name string
		info debug.BuildInfo
		want string
	}{
		{
			name: "module version",
			info: debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}},
			want: "v0.4.0",
		},
		{
			name: "devel with revision",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
			},
			want: "dev-0123456",
		},
		{
			name: "nothing recorded",
			info: debug.BuildInfo{},
			want: "dev",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildVersion(&tt.info); got != tt.want {
				t.Fatalf("buildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
