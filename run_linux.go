//go:build linux

package paneshim

import (
	"github.com/1broseidon/paneshim/backend/x11"
	"github.com/1broseidon/paneshim/wsys"
)

func start(opts wsys.Options) (Driver, error) {
	return x11.Start(opts)
}
