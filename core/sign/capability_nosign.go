//go:build nosign

package sign

import (
	"fmt"

	coreerrors "github.com/attestlog/attestlog/core/errors"
)

func Capability() error {
	return coreerrors.Wrap(
		fmt.Errorf("signing support excluded from this build"),
		coreerrors.CategoryDependencyMissing,
		"signing_unavailable",
		"rebuild without the nosign tag to enable ed25519 signing",
	)
}
