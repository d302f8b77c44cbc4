package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "second precision",
			in:   time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC),
			want: "2024-03-07T09-05-02",
		},
		{
			name: "end of year",
			in:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			want: "2024-12-31T23-59-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Timestamp(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, ":")
			assert.NotContains(t, got, "/")
		})
	}
}

func TestTimestampSortsChronologically(t *testing.T) {
	earlier := Timestamp(time.Date(2024, 9, 30, 23, 59, 59, 0, time.UTC))
	later := Timestamp(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{
			name:   "local path",
			target: "/mnt/backups",
			want:   "_mnt_backups",
		},
		{
			name:   "remote spec",
			target: "user@host:/backups",
			want:   "user_host__backups",
		},
		{
			name:   "safe characters kept",
			target: "backup-2.example_dir",
			want:   "backup-2.example_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.target))
		})
	}
}

func TestTargetPath(t *testing.T) {
	tests := []struct {
		name  string
		root  string
		elems []string
		want  string
	}{
		{
			name:  "local root",
			root:  "/mnt/backups",
			elems: []string{"hourly", "2024-01-01T00-00-00"},
			want:  "/mnt/backups/hourly/2024-01-01T00-00-00",
		},
		{
			name:  "remote root keeps its spec",
			root:  "user@host:/backups",
			elems: []string{"backup_enabled"},
			want:  "user@host:/backups/backup_enabled",
		},
		{
			name:  "trailing slash trimmed",
			root:  "/mnt/backups/",
			elems: []string{"hourly"},
			want:  "/mnt/backups/hourly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetPath(tt.root, tt.elems...))
		})
	}
}

func TestStateDirs(t *testing.T) {
	assert.Equal(t, "/base/run/slug", RunDir("/base", "slug"))
	assert.Equal(t, "/base/logs/slug", LogDir("/base", "slug"))
}
