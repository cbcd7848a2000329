package geo

import (
	"fmt"
	"math"

	"campaignhub/internal/domain"
)

const (
	KmToMiles = 0.621371

	// WGS-84 ellipsoid.
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = wgs84A * (1 - wgs84F)

	meanEarthRadiusKm = 6371.0088
	vincentyMaxIter   = 200
	vincentyEpsilon   = 1e-12
)

type Distance struct {
	Km    float64 `json:"km"`
	Miles float64 `json:"miles"`
}

// Between returns the geodesic distance between two [longitude, latitude] pairs.
// Both values are rounded to two decimals.
func Between(a, b []float64) (Distance, error) {
	if len(a) != 2 || len(b) != 2 {
		return Distance{}, fmt.Errorf("%w: both locations must have exactly 2 coordinates", domain.ErrValidation)
	}
	if errs := append(checkPair("from", a), checkPair("to", b)...); len(errs) > 0 {
		return Distance{}, &domain.ValidationError{Message: "coordinates out of range", Details: errs}
	}

	km := vincentyKm(a[1], a[0], b[1], b[0])
	return Distance{Km: round2(km), Miles: round2(km * KmToMiles)}, nil
}

// vincentyKm solves the inverse geodesic problem on the WGS-84 ellipsoid.
// Nearly antipodal points can fail to converge; those fall back to the
// spherical haversine distance.
func vincentyKm(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	L := rad(lon2 - lon1)
	U1 := math.Atan((1 - wgs84F) * math.Tan(rad(lat1)))
	U2 := math.Atan((1 - wgs84F) * math.Tan(rad(lat2)))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinSigma, cosSigma, sigma, cos2Alpha, cos2SigmaM float64
	converged := false

	for i := 0; i < vincentyMaxIter; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Sqrt(math.Pow(cosU2*sinLambda, 2) +
			math.Pow(cosU1*sinU2-sinU1*cosU2*cosLambda, 2))
		if sinSigma == 0 {
			return 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)

		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}

		C := wgs84F / 16 * cos2Alpha * (4 + wgs84F*(4-3*cos2Alpha))
		prev := lambda
		lambda = L + (1-C)*wgs84F*sinAlpha*
			(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

		if math.Abs(lambda-prev) < vincentyEpsilon {
			converged = true
			break
		}
	}

	if !converged {
		return haversineKm(lat1, lon1, lat2, lon2)
	}

	uSq := cos2Alpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	meters := wgs84B * A * (sigma - deltaSigma)
	return meters / 1000
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * meanEarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
