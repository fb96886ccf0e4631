//go:build !linux

package device

import "github.com/juju/errors"

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func QueryIdentity(fd uintptr) (id inputID, name string, err error) {
	return inputID{}, "", errors.New("device: QueryIdentity unsupported on this platform")
}
