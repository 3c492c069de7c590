// Package enrich runs the asynchronous geolocation pipeline: it walks
// picture index documents, extracts GPS coordinates from photos that have
// not been processed, reverse-geocodes them, and writes the results back.
// A file-based lock marker with a staleness window keeps concurrent passes
// from piling up, whether launched by the server or the standalone
// geoprocessor command.
package enrich
