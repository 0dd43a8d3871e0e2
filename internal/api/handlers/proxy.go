package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"proxy-rotator/internal/domain"
	"proxy-rotator/internal/interfaces"
)

type ProxyHandler struct {
	store    interfaces.ProxyStore
	selector interfaces.ProxySelector
}

func NewProxyHandler(store interfaces.ProxyStore, selector interfaces.ProxySelector) *ProxyHandler {
	return &ProxyHandler{
		store:    store,
		selector: selector,
	}
}

type ProxyListResponse struct {
	Count   int                  `json:"count"`
	Proxies []domain.ProxyRecord `json:"proxies"`
}

type IntervalRequest struct {
	Interval *int `json:"interval" validate:"required"`
}

type IntervalResponse struct {
	Interval int `json:"interval"`
}

// GET /api/proxies
func (h *ProxyHandler) ListProxies(c echo.Context) error {
	proxies, err := h.store.GetProxyList(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, ProxyListResponse{Count: len(proxies), Proxies: proxies})
}

// POST /api/proxies/refresh
func (h *ProxyHandler) RefreshProxies(c echo.Context) error {
	proxies, err := h.store.RefreshProxies(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, ProxyListResponse{Count: len(proxies), Proxies: proxies})
}

// GET /api/proxies/random
func (h *ProxyHandler) RandomProxy(c echo.Context) error {
	proxy, err := h.selector.RandomProxy(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, proxy)
}

// GET /api/proxies/sample?k=N
func (h *ProxyHandler) SampleProxies(c echo.Context) error {
	k, err := strconv.Atoi(c.QueryParam("k"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "query parameter k must be an integer",
		})
	}

	proxies, err := h.selector.Sample(c.Request().Context(), k)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, ProxyListResponse{Count: len(proxies), Proxies: proxies})
}

// GET /api/proxies/sticky
func (h *ProxyHandler) StickyProxy(c echo.Context) error {
	proxy, err := h.selector.StickyProxy(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, proxy)
}

// GET /api/proxies/sticky/interval
func (h *ProxyHandler) GetStickyInterval(c echo.Context) error {
	return c.JSON(http.StatusOK, IntervalResponse{Interval: h.selector.StickyInterval()})
}

// PUT /api/proxies/sticky/interval
func (h *ProxyHandler) SetStickyInterval(c echo.Context) error {
	var req IntervalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	if err := h.selector.SetStickyInterval(*req.Interval); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, IntervalResponse{Interval: h.selector.StickyInterval()})
}

func errorJSON(c echo.Context, err error) error {
	return c.JSON(StatusFor(err), map[string]string{
		"error": err.Error(),
	})
}

// StatusFor maps domain errors to HTTP status codes. Selection errors take
// precedence over the population error they may be joined with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidSampleSize), errors.Is(err, domain.ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientProxies):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyProxyList):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrFetch),
		errors.Is(err, domain.ErrTableNotFound),
		errors.Is(err, domain.ErrMalformedTable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
