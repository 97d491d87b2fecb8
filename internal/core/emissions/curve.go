// Package emissions holds the two frozen reward-curve lookup tables.
//
// Grounded verbatim on original_source/api/src/curve.rs
// (get_storage_rate, get_inflation_rate) — spec.md §9 mandates these
// tables be "serialized byte-identically to ensure consensus", so the
// bucket boundaries and values below are transcribed, not re-derived.
// Any future change to these tables is a protocol fork, not a tuning
// change.
package emissions

import "github.com/tapedrive-io/tape/internal/core/primitives"

// StorageRate returns the reward-per-minute contribution of total bytes
// stored in the archive; monotonically non-decreasing, saturating at
// 20 TAPE/min (20 * primitives.OneTape base units) for archives at or
// beyond 1 PiB.
func StorageRate(archiveByteSize uint64) uint64 {
	switch {
	case archiveByteSize < 1_000:
		return 0
	case archiveByteSize < 1_048_576:
		return 190
	case archiveByteSize < 2_486_565:
		return 451
	case archiveByteSize < 5_896_576:
		return 1_070
	case archiveByteSize < 13_982_985:
		return 2_537
	case archiveByteSize < 33_158_884:
		return 6_017
	case archiveByteSize < 78_632_107:
		return 14_267
	case archiveByteSize < 186_466_111:
		return 33_833
	case archiveByteSize < 442_180_832:
		return 80_231
	case archiveByteSize < 1_048_575_999:
		return 190_259
	case archiveByteSize < 2_486_565_554:
		return 451_175
	case archiveByteSize < 5_896_576_174:
		return 1_069_904
	case archiveByteSize < 13_982_985_692:
		return 2_537_141
	case archiveByteSize < 33_158_884_597:
		return 6_016_510
	case archiveByteSize < 78_632_107_044:
		return 14_267_394
	case archiveByteSize < 186_466_111_066:
		return 33_833_322
	case archiveByteSize < 442_180_832_779:
		return 80_231_450
	case archiveByteSize < 1_048_575_999_999:
		return 190_258_752
	case archiveByteSize < 2_486_565_554_787:
		return 451_174_602
	case archiveByteSize < 5_896_576_174_027:
		return 1_069_903_587
	case archiveByteSize < 13_982_985_692_520:
		return 2_537_141_233
	case archiveByteSize < 33_158_884_597_887:
		return 6_016_510_008
	case archiveByteSize < 78_632_107_044_498:
		return 14_267_393_633
	case archiveByteSize < 186_466_111_066_097:
		return 33_833_322_109
	case archiveByteSize < 442_180_832_779_129:
		return 80_231_450_424
	case archiveByteSize < 1_048_576_000_000_000:
		return 190_258_751_903
	default:
		return 20 * primitives.OneTape
	}
}

// InflationRate returns the reward-per-minute contribution of the
// current epoch index, decaying ~25% per year and reaching 0 after 25
// years (EpochsPerYear epochs per year).
func InflationRate(currentEpoch uint64) uint64 {
	const y = primitives.EpochsPerYear
	switch {
	case currentEpoch < 1*y:
		return 10_000_000_000
	case currentEpoch < 2*y:
		return 7_500_000_000
	case currentEpoch < 3*y:
		return 5_625_000_000
	case currentEpoch < 4*y:
		return 4_218_750_000
	case currentEpoch < 5*y:
		return 3_164_062_500
	case currentEpoch < 6*y:
		return 2_373_046_875
	case currentEpoch < 7*y:
		return 1_779_785_156
	case currentEpoch < 8*y:
		return 1_334_838_867
	case currentEpoch < 9*y:
		return 1_001_129_150
	case currentEpoch < 10*y:
		return 750_846_862
	case currentEpoch < 11*y:
		return 563_135_147
	case currentEpoch < 12*y:
		return 422_351_360
	case currentEpoch < 13*y:
		return 316_763_520
	case currentEpoch < 14*y:
		return 237_572_640
	case currentEpoch < 15*y:
		return 178_179_480
	case currentEpoch < 16*y:
		return 133_634_610
	case currentEpoch < 17*y:
		return 100_225_957
	case currentEpoch < 18*y:
		return 75_169_468
	case currentEpoch < 19*y:
		return 56_377_101
	case currentEpoch < 20*y:
		return 42_282_825
	case currentEpoch < 21*y:
		return 31_712_119
	case currentEpoch < 22*y:
		return 23_784_089
	case currentEpoch < 23*y:
		return 17_838_067
	case currentEpoch < 24*y:
		return 13_378_550
	case currentEpoch < 25*y:
		return 10_033_913
	default:
		return 0
	}
}

// RewardRate sums the two curves into the per-block reward rate, as
// spec.md §4.5's epoch-advance step 4 requires.
func RewardRate(archiveBytesStored, epochNumber uint64) uint64 {
	return StorageRate(archiveBytesStored) + InflationRate(epochNumber)
}
