package ffmpeg

import (
	"errors"
	"testing"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		onPath  map[string]string
		want    BinaryPaths
		wantErr bool
	}{
		{
			name:   "path lookup",
			onPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "ffprobe": "/usr/bin/ffprobe"},
			want:   BinaryPaths{FFmpeg: "/usr/bin/ffmpeg", FFprobe: "/usr/bin/ffprobe"},
		},
		{
			name:   "env override",
			env:    map[string]string{envFFprobePath: "/opt/ffprobe"},
			onPath: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
			want:   BinaryPaths{FFmpeg: "/usr/bin/ffmpeg", FFprobe: "/opt/ffprobe"},
		},
		{
			name:    "missing ffprobe",
			onPath:  map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			lookPath := func(name string) (string, error) {
				if p, ok := tt.onPath[name]; ok {
					return p, nil
				}
				return "", errors.New("not found")
			}

			got, err := locate(getenv, lookPath)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("locate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
