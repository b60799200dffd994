package pipeline

import "moviedash/internal"

// DurationCategory maps minutes to the display category. Boundaries are
// inclusive on the upper side: 90 and 120 are Standard, 150 is 120-150 min.
func DurationCategory(minutes *int) *string {
	if minutes == nil {
		return nil
	}
	var c string
	switch m := *minutes; {
	case m < 90:
		c = internal.CategoryShort
	case m <= 120:
		c = internal.CategoryStandard
	case m <= 150:
		c = internal.CategoryLong
	default:
		c = internal.CategoryEpic
	}
	return &c
}

// DurationBucket maps minutes to the coarser filter bucket. Its 120/180
// thresholds are independent of DurationCategory's.
//
// With no minutes, a "150+ min" category still lands in "3–4 hrs" and
// everything else is "Unknown". That asymmetry mirrors how the dataset was
// first cleaned and is kept as is; it may be an upstream defect.
func DurationBucket(minutes *int, category *string) string {
	if minutes == nil {
		if category != nil && *category == internal.CategoryEpic {
			return internal.BucketThreeFour
		}
		return internal.BucketUnknown
	}
	switch m := *minutes; {
	case m < 120:
		return internal.BucketUnderTwo
	case m <= 180:
		return internal.BucketTwoThree
	default:
		return internal.BucketThreeFour
	}
}
