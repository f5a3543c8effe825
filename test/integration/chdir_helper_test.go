package integration

import (
	"os"
	"testing"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (stand-in for t.Chdir, which
// requires Go 1.24).
func chdir(t testing.TB, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
