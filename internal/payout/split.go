package payout

type SplitMode string

const (
	SplitModePercent SplitMode = "percent"
	SplitModeFlat    SplitMode = "flat"
)

// TeamSplit mirrors the stored split configuration without depending on the
// store package.
type TeamSplit struct {
	Mode               SplitMode
	PrimaryPercent     int
	PrimaryFlatCents   int64
	SecondaryFlatCents int64
}

// SplitAmount divides a job total between primary and secondary pro.
// Percent mode rounds the primary share to the nearest cent and gives the
// exact remainder to the secondary, so the parts always sum to the total.
// Flat mode pays each configured amount verbatim, independent of the total.
func SplitAmount(totalCents int64, split TeamSplit) (primaryCents, secondaryCents int64) {
	if split.Mode == SplitModeFlat {
		return split.PrimaryFlatCents, split.SecondaryFlatCents
	}

	primaryCents = (totalCents*int64(split.PrimaryPercent) + 50) / 100
	secondaryCents = totalCents - primaryCents
	return primaryCents, secondaryCents
}
