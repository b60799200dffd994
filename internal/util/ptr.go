package util

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }

func Int64Ptr(v int64) *int64 { return &v }

func DerefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func DerefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
