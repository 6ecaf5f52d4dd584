package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lintang/routeplanner/domain"
	"lintang/routeplanner/pkg/datastructure"
	"lintang/routeplanner/pkg/geocoder"
	"lintang/routeplanner/pkg/osrm"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"go.uber.org/zap"
)

type GatewayService interface {
	Geocode(ctx context.Context, location string) (geocoder.Candidate, error)
	Route(ctx context.Context, src, dst datastructure.Coordinate) (osrm.Result, error)
}

type GatewayHandler struct {
	svc          GatewayService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
	log          *zap.Logger
}

func GatewayRouter(r chi.Router, svc GatewayService, m *metrics, log *zap.Logger) {
	validate, trans := newValidator()
	handler := &GatewayHandler{
		svc:          svc,
		promeMetrics: m,
		validate:     validate,
		trans:        trans,
		log:          log,
	}

	r.Get("/", handler.status)
	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Get("/geocode", handler.geocode)
			r.Post("/route", handler.route)
		})
	})
}

// newValidator registers the english translations, with "required" rendered as "<Field> is required".
func newValidator() (*validator.Validate, ut.Translator) {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	validate := validator.New()
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	_ = validate.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is required", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})
	return validate, trans
}

// GeocodeRequest model info
//
//	@Description	query parameters of a place lookup
type GeocodeRequest struct {
	Location string `json:"location" validate:"required"`
}

// GeocodeResponse model info
//
//	@Description	coordinates of the first match, as sent by the geocoding provider
type GeocodeResponse struct {
	Lat string `json:"lat" example:"48.8588897"`
	Lon string `json:"lon" example:"2.3200410"`
}

// geocode
//
//	@Summary		resolve a place name to coordinates.
//	@Description	resolve a free text place name to coordinates through the geocoding provider. Only the first match is returned.
//	@Tags			geocode
//	@Param			location	query	string	true	"place name, e.g. Paris"
//	@Produce		application/json
//	@Router			/api/geocode [get]
//	@Success		200	{array}		GeocodeResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *GatewayHandler) geocode(w http.ResponseWriter, r *http.Request) {
	data := GeocodeRequest{Location: strings.TrimSpace(r.URL.Query().Get("location"))}

	if err := h.validate.Struct(data); err != nil {
		h.promeMetrics.GeocodeQueryCount.WithLabelValues("invalid").Inc()
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrChi(domain.WrapErrorf(vv[0], domain.ErrValidation, "%s", vv[0].Error())))
		return
	}

	c, err := h.svc.Geocode(r.Context(), data.Location)
	if err != nil {
		h.promeMetrics.GeocodeQueryCount.WithLabelValues(resultLabel(err)).Inc()
		h.upstreamFailure("geocoder", err)
		render.Render(w, r, ErrChi(err))
		return
	}

	h.promeMetrics.GeocodeQueryCount.WithLabelValues("found").Inc()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, []GeocodeResponse{{Lat: string(c.Lat), Lon: string(c.Lon)}})
}

// RouteRequest model info
//
//	@Description	request body of a driving route query between 2 places
type RouteRequest struct {
	SrcLat *float64 `json:"src_lat" validate:"required,gte=-90,lte=90"`
	SrcLon *float64 `json:"src_lon" validate:"required,gte=-180,lte=180"`
	DstLat *float64 `json:"dst_lat" validate:"required,gte=-90,lte=90"`
	DstLon *float64 `json:"dst_lon" validate:"required,gte=-180,lte=180"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	return nil
}

// RouteResponse	model info
//
//	@Description	response body of a driving route query. distance is in km, duration in minutes.
type RouteResponse struct {
	Path     string                     `json:"path"`
	Distance float64                    `json:"distance"`
	Duration float64                    `json:"duration"`
	Found    bool                       `json:"found"`
	Route    []datastructure.Coordinate `json:"route"`
}

func NewRouteResponse(res osrm.Result) *RouteResponse {
	if res.Outcome != osrm.OutcomeRouted {
		return &RouteResponse{Route: []datastructure.Coordinate{}}
	}
	return &RouteResponse{
		Path:     res.Route.Geometry.Encode(),
		Distance: res.Route.Summary.DistanceKm,
		Duration: res.Route.Summary.DurationMin,
		Found:    true,
		Route:    res.Route.Geometry,
	}
}

// route
//
//	@Summary		driving route between 2 places.
//	@Description	driving route between 2 coordinates through the routing provider. found is false when the provider knows no route.
//	@Tags			route
//	@Param			body	body	RouteRequest	true	"source and destination coordinates"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/route [post]
//	@Success		200	{object}	RouteResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *GatewayHandler) route(w http.ResponseWriter, r *http.Request) {
	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	if err := h.validate.Struct(*data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	src := datastructure.NewCoordinate(*data.SrcLat, *data.SrcLon)
	dst := datastructure.NewCoordinate(*data.DstLat, *data.DstLon)
	res, err := h.svc.Route(r.Context(), src, dst)
	if err != nil {
		h.upstreamFailure("router", err)
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewRouteResponse(res))
}

// StatusResponse model info
//
//	@Description	liveness of the gateway
type StatusResponse struct {
	ActiveStatus bool `json:"activeStatus"`
	Error        bool `json:"error"`
}

// status
//
//	@Summary	liveness probe.
//	@Tags		status
//	@Produce	application/json
//	@Router		/ [get]
//	@Success	200	{object}	StatusResponse
func (h *GatewayHandler) status(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, StatusResponse{ActiveStatus: true, Error: false})
}

func (h *GatewayHandler) upstreamFailure(upstream string, err error) {
	if !errors.Is(err, domain.ErrUpstream) {
		return
	}
	h.promeMetrics.UpstreamFailures.WithLabelValues(upstream).Inc()
	h.log.Error("upstream request failed", zap.String("upstream", upstream), zap.Error(errors.Unwrap(err)))
}

func resultLabel(err error) string {
	switch domain.CodeOf(err) {
	case domain.ErrValidation:
		return "invalid"
	case domain.ErrNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// ErrResponse model info
//
//	@Description	model for error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	ErrorText     string   `json:"error"` // user-level error message
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Invalid request",
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		ErrorText:      "Invalid request",
	}
}

// ErrChi renders a domain error. Anything that would end up as a 500 gets the generic message,
// so provider details never reach the client.
func ErrChi(err error) render.Renderer {
	status := getStatusCode(err)
	text := err.Error()
	if status == http.StatusInternalServerError {
		text = domain.MessageInternalServerError
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		ErrorText:      text,
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *domain.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	}
	switch ierr.Code() {
	case domain.ErrValidation:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrUpstream, domain.ErrPositionUnavailable:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
