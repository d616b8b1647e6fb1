package tsn

import (
	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/hal"
)

// SetupPtm dispatches PCIe Precision Time Measurement configuration
// to the adapter's family vtable (spec §4.H "thin sequencer").
func SetupPtm(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error {
	return hal.SetupPtm(ctx, backend, cfg)
}
