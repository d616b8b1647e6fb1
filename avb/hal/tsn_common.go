package hal

import (
	"time"

	"github.com/zarfld/IntelAvbFilter-sub000/avb"
	"github.com/zarfld/IntelAvbFilter-sub000/avb/ptp"
)

// TSN register block (spec §4.H, I226 addresses; I225 shares the same
// layout except for the FUTSCDDIS behaviour called out below).
const (
	RegTQAVCTRL    uint32 = 0x3570
	RegQBVCYCLETS  uint32 = 0x3320
	RegQBVCYCLET   uint32 = 0x331C
	RegBASETH      uint32 = 0x3318
	RegBASETL      uint32 = 0x3314
	RegTXQCTLBase  uint32 = 0x3300
	RegSTQTBase    uint32 = 0x3340
	RegENDQTBase   uint32 = 0x3380
	RegFPConfig    uint32 = 0x3400 // FP_CONFIG: layout not pinned by an external register spec reference; see DESIGN.md
)

// RegStatusLink aliases the generic STATUS register used here as the
// link-up check ahead of Frame Preemption activation.
var RegStatusLink uint32 = avb.RegSTATUS

const (
	tqavctrlTransmitModeTsn uint32 = 0x1
	tqavctrlEnhancedQav     uint32 = 0x8
	tqavctrlFutscddis       uint32 = 0x800000

	txqctlQueueModeLauncht uint32 = 0x1

	fpPreemptableShift = 0
	fpFragShift        = 8
	fpFragMask         = 0xFF << fpFragShift
	fpVerifyEn         = 1 << 16
	fpEnable           = 1 << 31

	statusLinkUp = 1 << 1
)

const tasQueueCount = 4

func regTXQCTL(i int) uint32 { return RegTXQCTLBase + uint32(4*i) }
func regSTQT(i int) uint32   { return RegSTQTBase + uint32(4*i) }
func regENDQT(i int) uint32  { return RegENDQTBase + uint32(4*i) }

// validateTasPrereqs checks the §4.H prerequisites that do not depend
// on register state: the gate-duration/cycle-time invariant and the
// cycle time bound.
func validateTasPrereqs(ctx *avb.AdapterContext, cfg *avb.TasConfig) error {
	if ctx.State() < avb.HwStatePtpReady {
		return avb.NewStatusError(avb.StatusNotReady, "adapter not PtpReady")
	}
	cycle := cfg.CycleTimeTotalNs()
	if cycle == 0 || cycle > 1_000_000_000 {
		return avb.NewStatusError(avb.StatusInvalidParameter, "cycle time %dns out of (0, 1e9] range", cycle)
	}
	if cfg.SumGateDurations() != cycle {
		return avb.NewStatusError(avb.StatusInvalidParameter, "sum(gate durations)=%d != cycle_time_ns=%d", cfg.SumGateDurations(), cycle)
	}
	return nil
}

// verifyPhcAdvancing re-samples SYSTIML twice across ~10ms, per the
// §4.H re-verification-on-entry prerequisite.
func verifyPhcAdvancing(ctx *avb.AdapterContext, backend avb.PlatformBackend) (bool, error) {
	return ptp.VerifyAdvancing(ctx, backend)
}

func readSystim(ctx *avb.AdapterContext, backend avb.PlatformBackend) (uint64, error) {
	return ptp.ReadSystime(ctx, backend)
}

// computeBaseTime recomputes the base time to the next safe cycle
// boundary if the caller's requested base time is not far enough in
// the future (spec §4.H step 5 and prerequisite "configured base time
// >= current PTP time + safety margin").
func computeBaseTime(cfg *avb.TasConfig, systimNow uint64, cycle uint64) uint64 {
	const safetyMargin = 500 * uint64(time.Millisecond)
	requested := cfg.BaseTimeS*1_000_000_000 + uint64(cfg.BaseTimeNs)
	if requested >= systimNow+safetyMargin {
		return requested
	}
	base := systimNow + safetyMargin
	delta := base - systimNow
	cycles := (delta + cycle - 1) / cycle
	return systimNow + cycles*cycle
}

// runTasSequence implements the family-neutral body of the §4.H IEEE
// 802.1Qbv activation sequence. futscddisQuirk selects the I226-only
// two-write BASET_L behaviour; I225 passes false.
func runTasSequence(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.TasConfig, futscddisQuirk bool) error {
	if err := validateTasPrereqs(ctx, cfg); err != nil {
		return err
	}
	advancing, err := verifyPhcAdvancing(ctx, backend)
	if err != nil {
		return avb.NewStatusError(avb.StatusNotReady, "phc advancement check failed: %v", err)
	}
	if !advancing {
		return avb.NewStatusError(avb.StatusNotReady, "phc not advancing")
	}

	cycle := cfg.CycleTimeTotalNs()

	tqavctrl, err := ctx.ReadMmio32(backend, RegTQAVCTRL)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "read TQAVCTRL: %v", err)
	}
	basetHNow, _ := ctx.ReadMmio32(backend, RegBASETH)
	basetLNow, _ := ctx.ReadMmio32(backend, RegBASETL)
	scheduleRunning := basetHNow != 0 || basetLNow != 0

	tqavctrl |= tqavctrlTransmitModeTsn | tqavctrlEnhancedQav
	applyFutscddis := futscddisQuirk && !scheduleRunning
	if applyFutscddis {
		tqavctrl |= tqavctrlFutscddis
	}
	if err := ctx.WriteMmio32(backend, RegTQAVCTRL, tqavctrl); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write TQAVCTRL: %v", err)
	}

	if err := ctx.WriteMmio32(backend, RegQBVCYCLETS, uint32(cycle)); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write QBVCYCLET_S: %v", err)
	}
	if err := ctx.WriteMmio32(backend, RegQBVCYCLET, uint32(cycle)); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write QBVCYCLET: %v", err)
	}

	systimNow, err := readSystim(ctx, backend)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "read SYSTIM: %v", err)
	}
	base := computeBaseTime(cfg, systimNow, cycle)

	if err := ctx.WriteMmio32(backend, RegBASETH, uint32(base/1_000_000_000)); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write BASET_H: %v", err)
	}

	baseLValue := uint32(base % 1_000_000_000)
	if applyFutscddis {
		if err := ctx.WriteMmio32(backend, RegBASETL, 0); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "write BASET_L (pre-quirk zero): %v", err)
		}
	}
	if err := ctx.WriteMmio32(backend, RegBASETL, baseLValue); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write BASET_L: %v", err)
	}

	for i := 0; i < tasQueueCount; i++ {
		txqctl := uint32(0)
		if cfg.GateDurations[i] > 0 {
			txqctl |= txqctlQueueModeLauncht
		}
		if err := ctx.WriteMmio32(backend, regTXQCTL(i), txqctl); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "write TXQCTL(%d): %v", i, err)
		}
		if err := ctx.WriteMmio32(backend, regSTQT(i), 0); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "write STQT(%d): %v", i, err)
		}
		endWindow := uint32(0)
		if i == 0 {
			endWindow = uint32(cycle)
		}
		if err := ctx.WriteMmio32(backend, regENDQT(i), endWindow); err != nil {
			return avb.NewStatusError(avb.StatusHardwareError, "write ENDQT(%d): %v", i, err)
		}
	}

	return verifyTasActivation(ctx, backend, cycle, base)
}

func verifyTasActivation(ctx *avb.AdapterContext, backend avb.PlatformBackend, cycle, base uint64) error {
	tqavctrl, err := ctx.ReadMmio32(backend, RegTQAVCTRL)
	if err != nil || tqavctrl&tqavctrlTransmitModeTsn == 0 {
		return activationFailed(ctx, backend, "TQAVCTRL does not show TRANSMIT_MODE_TSN set")
	}
	cycleS, _ := ctx.ReadMmio32(backend, RegQBVCYCLETS)
	cycleT, _ := ctx.ReadMmio32(backend, RegQBVCYCLET)
	if uint64(cycleS) != cycle || uint64(cycleT) != cycle {
		return activationFailed(ctx, backend, "QBVCYCLET/_S readback mismatch")
	}
	baseH, _ := ctx.ReadMmio32(backend, RegBASETH)
	baseL, _ := ctx.ReadMmio32(backend, RegBASETL)
	if baseH == 0 && baseL == 0 {
		return activationFailed(ctx, backend, "BASET_H/L still zero after programming")
	}
	txq0, _ := ctx.ReadMmio32(backend, regTXQCTL(0))
	if txq0&txqctlQueueModeLauncht == 0 {
		return activationFailed(ctx, backend, "TXQCTL(0) does not show launch-time mode")
	}

	waitForBaseTime(ctx, backend, base, cycle)
	return nil
}

// waitForBaseTime polls SYSTIM through the backend's Sleep primitive,
// at most maxAttempts times at pollInterval spacing (about 128ms in
// all), and returns once SYSTIM reaches the programmed base time plus
// two cycles or the attempts run out; it reports neither outcome.
// computeBaseTime places the base time at least 500ms ahead, so with a
// PHC advancing at real time the attempts run out before the base time
// is reached.
func waitForBaseTime(ctx *avb.AdapterContext, backend avb.PlatformBackend, base, cycle uint64) {
	const maxAttempts = 64
	const pollInterval = 2 * time.Millisecond
	target := base + 2*cycle
	for attempt := 0; attempt < maxAttempts; attempt++ {
		now, err := readSystim(ctx, backend)
		if err != nil || now >= target {
			return
		}
		backend.Sleep(pollInterval)
	}
}

func activationFailed(ctx *avb.AdapterContext, backend avb.PlatformBackend, reason string) error {
	tqavctrl, _ := ctx.ReadMmio32(backend, RegTQAVCTRL)
	cycleS, _ := ctx.ReadMmio32(backend, RegQBVCYCLETS)
	cycleT, _ := ctx.ReadMmio32(backend, RegQBVCYCLET)
	baseH, _ := ctx.ReadMmio32(backend, RegBASETH)
	baseL, _ := ctx.ReadMmio32(backend, RegBASETL)
	return avb.NewStatusError(avb.StatusActivationFailed,
		"%s (TQAVCTRL=0x%08x QBVCYCLET_S=0x%08x QBVCYCLET=0x%08x BASET_H=0x%08x BASET_L=0x%08x)",
		reason, tqavctrl, cycleS, cycleT, baseH, baseL)
}

// runFpSequence implements the family-neutral §4.H IEEE 802.1Qbu
// sequence, shared by I225 and I226 since the spec does not call out a
// per-family difference for frame preemption.
func runFpSequence(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.FpConfig) error {
	status, err := ctx.ReadMmio32(backend, RegStatusLink)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "read link status: %v", err)
	}
	if status&statusLinkUp == 0 {
		return avb.NewStatusError(avb.StatusNotReady, "link is down")
	}

	if err := ctx.WriteMmio32(backend, RegFPConfig, 0); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "clear FP_CONFIG: %v", err)
	}

	value := (uint32(cfg.PreemptableQueues) << fpPreemptableShift) |
		(uint32(cfg.MinFragmentSize) << fpFragShift & fpFragMask) |
		fpEnable
	if !cfg.VerifyDisable {
		value |= fpVerifyEn
	}

	if err := ctx.WriteMmio32(backend, RegFPConfig, value); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write FP_CONFIG: %v", err)
	}

	readback, err := ctx.ReadMmio32(backend, RegFPConfig)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "readback FP_CONFIG: %v", err)
	}
	if readback&fpEnable == 0 {
		return avb.NewStatusError(avb.StatusActivationFailed, "FP_CONFIG enable bit did not stick, link partner may have refused preemption (readback=0x%08x)", readback)
	}
	return nil
}

// ptmCapabilityOffset is a simplification: the real PTM capability
// lives in PCIe extended configuration space (offset >= 0x100), which
// this core's 8-bit config offset accessor cannot address. See
// DESIGN.md for the Open Question this resolves.
const ptmCapabilityOffset uint8 = 0xE0

const (
	ptmEnableBit        uint32 = 1 << 0
	ptmGranularityShift        = 8
)

// runPtmSequence implements the §4.H "thin sequencer" for PCIe PTM:
// set the enable bit and granularity in the PTM capability register.
func runPtmSequence(ctx *avb.AdapterContext, backend avb.PlatformBackend, cfg *avb.PtmConfig) error {
	pci := ctx.Identity.Pci
	value := uint32(0)
	if cfg.Enabled {
		value |= ptmEnableBit
	}
	value |= uint32(cfg.ClockGranularity) << ptmGranularityShift

	if err := backend.WriteConfig32(pci, ptmCapabilityOffset, value); err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "write PTM capability register: %v", err)
	}
	readback, err := backend.ReadConfig32(pci, ptmCapabilityOffset)
	if err != nil {
		return avb.NewStatusError(avb.StatusHardwareError, "readback PTM capability register: %v", err)
	}
	if cfg.Enabled && readback&ptmEnableBit == 0 {
		return avb.NewStatusError(avb.StatusActivationFailed, "PTM enable bit did not stick (readback=0x%08x)", readback)
	}
	return nil
}
