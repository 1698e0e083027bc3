package utils

func StringPtr(s string) *string {
	return &s
}

// NullableString maps "" to nil for optional text columns.
func NullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
