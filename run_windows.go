//go:build windows

package paneshim

import (
	"github.com/1broseidon/paneshim/backend/win32"
	"github.com/1broseidon/paneshim/wsys"
)

func start(opts wsys.Options) (Driver, error) {
	return win32.Start(opts)
}
