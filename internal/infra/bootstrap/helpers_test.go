package bootstrap

import "github.com/DioGolang/GoTrack/internal/application/usecase/location"

func locationInput(driverID string) location.SubmitInput {
	return location.SubmitInput{DriverID: driverID, Latitude: 28.6139, Longitude: 77.2090}
}
