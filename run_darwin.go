//go:build darwin

package paneshim

import (
	"github.com/1broseidon/paneshim/backend/cocoa"
	"github.com/1broseidon/paneshim/wsys"
)

func start(opts wsys.Options) (Driver, error) {
	return cocoa.Start(opts)
}
