package domain

const (
	// Vendor constants
	VENDOR_OMDB = "omdb"

	// Tag constants
	TAG_DELIMITER = "|"
)
