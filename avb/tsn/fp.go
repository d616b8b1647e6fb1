package tsn

import (
	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/hal"
)

// SetupFp dispatches IEEE 802.1Qbu Frame Preemption configuration to
// the adapter's family vtable (spec §4.H). The min-fragment-size
// field only carries 8 significant bits in the register layout this
// core assumes; callers passing a larger value get it truncated at
// the hal layer the same way real hardware would.
func SetupFp(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error {
	return hal.SetupFp(ctx, backend, cfg)
}
