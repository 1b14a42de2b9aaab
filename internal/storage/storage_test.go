package storage

import "testing"

func TestObjectKey(t *testing.T) {
	tests := []struct {
		location string
		key      string
		ok       bool
	}{
		{"s3://avatars-bucket/avatars/1/x.png", "avatars/1/x.png", true},
		{"s3://avatars-bucket", "", false},
		{"s3://avatars-bucket/", "", false},
		{"https://cdn.example.com/x.png", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		key, ok := ObjectKey(tc.location)
		if key != tc.key || ok != tc.ok {
			t.Errorf("ObjectKey(%q) = %q, %v; want %q, %v", tc.location, key, ok, tc.key, tc.ok)
		}
	}
}
