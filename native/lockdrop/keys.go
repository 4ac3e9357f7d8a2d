package lockdrop

import (
	"strconv"

	"lockdropd/crypto"
)

var (
	configKey    = []byte("lockdrop/config")
	stateKey     = []byte("lockdrop/state")
	lockupPrefix = []byte("lockdrop/lockup/")
	userPrefix   = []byte("lockdrop/user/")
)

func lockupKey(addr crypto.Address, duration uint64) []byte {
	suffix := strconv.FormatUint(duration, 10)
	buf := make([]byte, 0, len(lockupPrefix)+crypto.AddressLength+1+len(suffix))
	buf = append(buf, lockupPrefix...)
	buf = append(buf, addr.Bytes()...)
	buf = append(buf, '/')
	buf = append(buf, suffix...)
	return buf
}

func userKey(addr crypto.Address) []byte {
	buf := make([]byte, 0, len(userPrefix)+crypto.AddressLength)
	buf = append(buf, userPrefix...)
	buf = append(buf, addr.Bytes()...)
	return buf
}
