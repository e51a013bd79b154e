//go:build !darwin

package mediakey

func post(Key) error {
	return ErrUnsupported
}
