package version

import "testing"

func TestString(t *testing.T) {
	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2024-05-01T09:00:00Z"
	defer func() { Version, GitSHA, BuildTime = "dev", "unknown", "unknown" }()

	want := "walkthrough 1.2.0 (abc1234, built 2024-05-01T09:00:00Z)"
	if got := String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
