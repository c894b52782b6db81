//go:build !linux && !windows && !darwin

package paneshim

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/paneshim/wsys"
)

func start(wsys.Options) (Driver, error) {
	return nil, fmt.Errorf("paneshim: no backend for %s", runtime.GOOS)
}
