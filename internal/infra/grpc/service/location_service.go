package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/application/usecase/geofence"
	"github.com/DioGolang/GoTrack/internal/application/usecase/location"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type LocationService struct {
	Submit   location.SubmitUseCase
	Nearest  location.NearestDriversUseCase
	Zones    geofence.ZonesContainingUseCase
	Defaults location.NearestInput
	Logger   logger.Logger
}

func NewLocationService(
	submit location.SubmitUseCase,
	nearest location.NearestDriversUseCase,
	zones geofence.ZonesContainingUseCase,
	defaults location.NearestInput,
	log logger.Logger,
) *LocationService {
	return &LocationService{
		Submit:   submit,
		Nearest:  nearest,
		Zones:    zones,
		Defaults: defaults,
		Logger:   log,
	}
}

type nearestRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	RadiusKm  float64  `json:"radiusKm"`
	Limit     int      `json:"limit"`
}

type zonesRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ZoneType  string   `json:"zoneType"`
}

func (s *LocationService) SubmitLocation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var input location.SubmitInput
	if err := decode(req, &input); err != nil {
		return nil, err
	}
	output, err := s.Submit.Execute(ctx, input)
	if err != nil {
		return nil, s.toStatus(ctx, "SubmitLocation", err)
	}
	return encode(output)
}

func (s *LocationService) NearestDrivers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in nearestRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, status.Error(codes.InvalidArgument, "latitude and longitude are required")
	}
	input := location.NearestInput{
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		RadiusKm:  in.RadiusKm,
		Limit:     in.Limit,
	}
	if input.RadiusKm == 0 {
		input.RadiusKm = s.Defaults.RadiusKm
	}
	if input.Limit == 0 {
		input.Limit = s.Defaults.Limit
	}

	drivers, err := s.Nearest.Execute(ctx, input)
	if err != nil {
		return nil, s.toStatus(ctx, "NearestDrivers", err)
	}
	return encode(map[string]any{"drivers": drivers})
}

func (s *LocationService) ZonesContaining(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in zonesRequest
	if err := decode(req, &in); err != nil {
		return nil, err
	}
	if in.Latitude == nil || in.Longitude == nil {
		return nil, status.Error(codes.InvalidArgument, "latitude and longitude are required")
	}
	zones, err := s.Zones.Execute(ctx, geofence.ZonesInput{
		Latitude:  *in.Latitude,
		Longitude: *in.Longitude,
		ZoneType:  in.ZoneType,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "ZonesContaining", err)
	}
	return encode(map[string]any{"zones": zones})
}

func (s *LocationService) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, entity.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, outbound.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, outbound.ErrUnavailable):
		s.Logger.Warn(ctx, "Dependency unavailable", logger.String("method", method), logger.WithError(err))
		return status.Error(codes.Unavailable, outbound.ErrUnavailable.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		s.Logger.Error(ctx, "gRPC call failed", logger.String("method", method), logger.WithError(err))
		return status.Error(codes.Internal, "internal error")
	}
}

// decode round-trips the Struct through JSON into a typed request.
func decode(req *structpb.Struct, dst any) error {
	raw, err := req.MarshalJSON()
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := new(structpb.Struct)
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
