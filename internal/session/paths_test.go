package session

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPathsUnderBaseDir(t *testing.T) {
	base := BaseDir()
	for name, path := range map[string]string{
		"dir":    Dir("main"),
		"lock":   LockPath("main"),
		"db":     DBPath("main"),
		"log":    LogPath("main"),
		"config": ConfigPath(),
	} {
		if !strings.HasPrefix(path, base) {
			t.Errorf("%s path %q escapes base dir %q", name, path, base)
		}
	}
}

func TestSessionsAreSeparated(t *testing.T) {
	if Dir("alpha") == Dir("beta") {
		t.Error("different sessions share a directory")
	}
	if DBPath("main") != filepath.Join(Dir("main"), "wastore.db") {
		t.Errorf("db path = %q", DBPath("main"))
	}
	if LockPath("main") != filepath.Join(Dir("main"), "LOCK") {
		t.Errorf("lock path = %q", LockPath("main"))
	}
}
