package service

import (
	"context"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/geocoder"
	"lintang/routeplanner/pkg/osrm"

	"go.uber.org/zap"
)

type Geocoder interface {
	Geocode(ctx context.Context, query string) (geocoder.Candidate, error)
}

type Router interface {
	Route(ctx context.Context, start, end *datastructure.Coordinate) (osrm.Result, error)
}

// GatewayService proxies place lookups and route requests to the public providers.
// It keeps no state between requests.
type GatewayService struct {
	geocoder Geocoder
	router   Router
	log      *zap.Logger
}

func NewGatewayService(g Geocoder, r Router, log *zap.Logger) *GatewayService {
	return &GatewayService{
		geocoder: g,
		router:   r,
		log:      log,
	}
}

// Geocode returns the first match for location.
func (s *GatewayService) Geocode(ctx context.Context, location string) (geocoder.Candidate, error) {
	s.log.Info("received location request", zap.String("location", location))

	c, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		return geocoder.Candidate{}, err
	}
	s.log.Debug("location resolved", zap.String("location", location),
		zap.String("lat", string(c.Lat)), zap.String("lon", string(c.Lon)))
	return c, nil
}

func (s *GatewayService) Route(ctx context.Context, src, dst datastructure.Coordinate) (osrm.Result, error) {
	if !src.Valid() || !dst.Valid() {
		return osrm.Result{}, domain.WrapErrorf(nil, domain.ErrValidation, "coordinates out of range")
	}
	return s.router.Route(ctx, &src, &dst)
}
