package wsys

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPlatformErrorMessage(t *testing.T) {
	named := &PlatformError{Op: "eglSwapBuffers", Code: 0x300E, Name: "EGL_CONTEXT_LOST"}
	if got := named.Error(); !strings.Contains(got, "eglSwapBuffers") || !strings.Contains(got, "EGL_CONTEXT_LOST") {
		t.Fatalf("named error message %q misses op or name", got)
	}
	anon := &PlatformError{Op: "CreateWindowExW", Code: 8}
	if got := anon.Error(); !strings.Contains(got, "0x8") {
		t.Fatalf("anonymous error message %q misses the code", got)
	}
}

func TestInitErrorUnwraps(t *testing.T) {
	cause := errors.New("display unreachable")
	err := fmt.Errorf("start: %w", &InitError{Step: "open display", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("InitError does not unwrap to its cause")
	}
	var ie *InitError
	if !errors.As(err, &ie) || ie.Step != "open display" {
		t.Fatalf("errors.As failed or wrong step: %+v", ie)
	}
}
