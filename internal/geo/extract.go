package geo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ErrNoGPSData indicates a photo has no usable GPS metadata. Missing files,
// absent EXIF blocks, malformed coordinate tuples and invalid rationals all
// collapse into this condition; none of them is a hard error.
var ErrNoGPSData = errors.New("geo: no GPS data")

// Coordinates is a decimal latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// ExtractGPS reads the embedded GPS tags of the photo at path and converts
// them to decimal coordinates rounded to six places.
func ExtractGPS(path string) (Coordinates, error) {
	f, err := os.Open(path)
	if err != nil {
		return Coordinates{}, ErrNoGPSData
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Coordinates{}, ErrNoGPSData
	}

	lat, err := decodeCoordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef, "N")
	if err != nil {
		return Coordinates{}, ErrNoGPSData
	}
	lon, err := decodeCoordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef, "E")
	if err != nil {
		return Coordinates{}, ErrNoGPSData
	}

	return Coordinates{Lat: lat, Lon: lon}, nil
}

// decodeCoordinate reads one coordinate tag plus its hemisphere reference,
// defaulting the hemisphere when the reference tag is absent.
func decodeCoordinate(x *exif.Exif, field, refField exif.FieldName, defaultRef string) (float64, error) {
	tag, err := x.Get(field)
	if err != nil {
		return 0, err
	}

	ref := defaultRef
	if refTag, refErr := x.Get(refField); refErr == nil {
		if v, strErr := refTag.StringVal(); strErr == nil && v != "" {
			ref = v
		}
	}

	return DMSToDecimal(rationalStrings(tag), ref)
}

// rationalStrings renders a coordinate tag's components as "num/denom"
// strings, the form EXIF stores them in.
func rationalStrings(tag *tiff.Tag) []string {
	parts := make([]string, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		num, den, err := tag.Rat2(i)
		if err != nil {
			// Keep the malformed component; DMSToDecimal rejects it.
			parts = append(parts, "invalid")
			continue
		}
		parts = append(parts, fmt.Sprintf("%d/%d", num, den))
	}
	return parts
}

// DMSToDecimal converts a degree/minute/second tuple of rational strings
// and a hemisphere reference to decimal degrees, rounded to six places.
// Southern and western hemispheres yield negative values.
func DMSToDecimal(parts []string, ref string) (float64, error) {
	if len(parts) < 3 {
		return 0, fmt.Errorf("geo: coordinate has %d components, need 3", len(parts))
	}

	degrees, err := ParseRational(parts[0])
	if err != nil {
		return 0, err
	}
	minutes, err := ParseRational(parts[1])
	if err != nil {
		return 0, err
	}
	seconds, err := ParseRational(parts[2])
	if err != nil {
		return 0, err
	}

	decimal := degrees + minutes/60 + seconds/3600
	if ref == "S" || ref == "W" {
		decimal = -decimal
	}

	return math.Round(decimal*1e6) / 1e6, nil
}

// ParseRational parses an EXIF rational such as "48/1" to a float. Plain
// numeric strings are accepted as-is. A zero denominator or malformed
// input is an error.
func ParseRational(s string) (float64, error) {
	if !strings.Contains(s, "/") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("geo: invalid rational %q", s)
		}
		return v, nil
	}

	parts := strings.SplitN(s, "/", 2)
	num, numErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, denErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if numErr != nil || denErr != nil || den == 0 {
		return 0, fmt.Errorf("geo: invalid rational %q", s)
	}

	return num / den, nil
}

// CaptureDate returns the photo's embedded original capture time. Callers
// default to "-" display values when this fails.
func CaptureDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}

	return x.DateTime()
}
