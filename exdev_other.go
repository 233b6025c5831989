//go:build !unix

package imagededup

func isCrossDevice(error) bool {
	return false
}
