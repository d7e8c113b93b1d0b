//go:build !nosign

package sign

// Capability reports whether signing support is compiled in. Builds that
// exclude it (the nosign tag) get a classified dependency_missing error
// instead of a runtime probe.
func Capability() error {
	return nil
}
