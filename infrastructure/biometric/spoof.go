package biometric

import "rollcall.io/infrastructure/biometric/types"

// AggregateSpoof reduces per-box detections to a single verdict.
// A tie between real and spoof counts is settled by the label of the most
// confident detection, the first one on equal confidence.
func AggregateSpoof(detections []types.SpoofDetection) types.SpoofVerdict {
	if len(detections) == 0 {
		return types.SpoofVerdict{Overall: types.SpoofLabelNoFace}
	}

	var counts types.SpoofCounts
	top := detections[0]
	for i, detection := range detections {
		switch detection.Label {
		case types.SpoofLabelReal:
			counts.Real++
		case types.SpoofLabelSpoof:
			counts.Spoof++
		default:
			counts.Unknown++
		}
		if i > 0 && detection.Confidence > top.Confidence {
			top = detection
		}
	}

	var overall types.SpoofLabel
	switch {
	case counts.Real > counts.Spoof:
		overall = types.SpoofLabelReal
	case counts.Spoof > counts.Real:
		overall = types.SpoofLabelSpoof
	default:
		overall = normalizeLabel(top.Label)
	}

	return types.SpoofVerdict{
		Overall: overall,
		Counts:  counts,
		IsSpoof: overall == types.SpoofLabelSpoof,
	}
}

func normalizeLabel(label types.SpoofLabel) types.SpoofLabel {
	switch label {
	case types.SpoofLabelReal, types.SpoofLabelSpoof:
		return label
	}
	return types.SpoofLabelUnknown
}

// LabelForClass maps a classifier class name to a label. Names other than
// "real" and "spoof" become unknown.
func LabelForClass(name string) types.SpoofLabel {
	return normalizeLabel(types.SpoofLabel(name))
}
