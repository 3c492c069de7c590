// Package geo extracts GPS coordinates from photo EXIF metadata and
// resolves them to place names through a Nominatim-style reverse geocoding
// service. GPS absence is modeled as the soft condition ErrNoGPSData rather
// than a failure: photos without coordinates are a normal part of any
// library and are recorded as such.
package geo
