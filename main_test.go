//go:build linux && (amd64 || arm64)

package main

import "testing"

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    Config
	}{
		{
			name: "device only",
			args: []string{"/dev/input/event3"},
			want: Config{DevicePath: "/dev/input/event3"},
		},
		{
			name: "limit and quiet",
			args: []string{"--limit", "500", "--quiet", "/dev/input/event3"},
			want: Config{DevicePath: "/dev/input/event3", Limit: 500, Quiet: true},
		},
		{
			name: "short flags after positional",
			args: []string{"/dev/input/event0", "-n", "10", "-q"},
			want: Config{DevicePath: "/dev/input/event0", Limit: 10, Quiet: true},
		},
		{
			name: "no arguments leaves device empty",
			args: nil,
			want: Config{},
		},
		{
			name:    "non-numeric limit",
			args:    []string{"--limit", "abc", "/dev/input/event3"},
			wantErr: true,
		},
		{
			name:    "negative limit",
			args:    []string{"--limit", "-5", "/dev/input/event3"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus", "/dev/input/event3"},
			wantErr: true,
		},
		{
			name:    "extra positional argument",
			args:    []string{"/dev/input/event3", "/dev/input/event4"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseFlags(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFlags(%v) succeeded, want error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags(%v) failed: %v", tt.args, err)
			}
			if cfg.DevicePath != tt.want.DevicePath {
				t.Errorf("DevicePath = %q, want %q", cfg.DevicePath, tt.want.DevicePath)
			}
			if cfg.Limit != tt.want.Limit {
				t.Errorf("Limit = %d, want %d", cfg.Limit, tt.want.Limit)
			}
			if cfg.Quiet != tt.want.Quiet {
				t.Errorf("Quiet = %v, want %v", cfg.Quiet, tt.want.Quiet)
			}
		})
	}
}
