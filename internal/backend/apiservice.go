package backend

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/jo-hoe/imagerepo/internal/backend/database"
	"github.com/jo-hoe/imagerepo/internal/core"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIService struct {
	coreService *core.CoreService
}

type ConnectRequest struct {
	Endpoint string `json:"endpoint" validate:"max=2048"`
	Username string `json:"username" validate:"max=256"`
	Password string `json:"password" validate:"max=1024"`
}

type AddImageRequest struct {
	Path string `json:"path" validate:"max=4096"`
}

type AddAllImagesRequest struct {
	Folder string `json:"folder" validate:"max=4096"`
}

type OperationResponse struct {
	Status core.Status       `json:"status"`
	ID     int64             `json:"id,omitempty"`
	Batch  *core.BatchResult `json:"batch,omitempty"`
}

type ListImagesResponse struct {
	Status core.Status           `json:"status"`
	Images []*database.ImageInfo `json:"images"`
}

func NewAPIService(coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.GET("/status", s.statusHandler)
	api.POST("/connect", s.connectHandler)
	api.POST("/schema", s.ensureSchemaHandler)
	api.POST("/disconnect", s.disconnectHandler)
	api.GET("/images", s.listImagesHandler)
	api.POST("/images", s.addImageHandler)
	api.POST("/images/batch", s.addAllImagesHandler)
	api.GET("/images/:id", s.getImageHandler)
	api.DELETE("/images/:id", s.deleteImageHandler)
}

func (s *APIService) statusHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, OperationResponse{Status: s.coreService.Status()})
}

// connectHandler opens the session and ensures the images table, mirroring a
// single "connect" action.
func (s *APIService) connectHandler(ctx echo.Context) error {
	var req ConnectRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	err := s.coreService.Connect(ctx.Request().Context(), req.Endpoint, req.Username, req.Password)
	if err == nil {
		err = s.coreService.EnsureSchema(ctx.Request().Context())
	}
	return s.respond(ctx, err, OperationResponse{})
}

func (s *APIService) ensureSchemaHandler(ctx echo.Context) error {
	err := s.coreService.EnsureSchema(ctx.Request().Context())
	return s.respond(ctx, err, OperationResponse{})
}

func (s *APIService) disconnectHandler(ctx echo.Context) error {
	if err := s.coreService.Close(); err != nil {
		slog.Error("disconnectHandler: failed to close session", "error", err)
		return ctx.JSON(http.StatusInternalServerError, OperationResponse{
			Status: core.StatusFromError(err, ""),
		})
	}
	return ctx.JSON(http.StatusOK, OperationResponse{Status: s.coreService.Status()})
}

func (s *APIService) addImageHandler(ctx echo.Context) error {
	var req AddImageRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	id, err := s.coreService.AddImage(ctx.Request().Context(), req.Path)
	return s.respond(ctx, err, OperationResponse{ID: id})
}

func (s *APIService) addAllImagesHandler(ctx echo.Context) error {
	var req AddAllImagesRequest
	if err := bindAndValidate(ctx, &req); err != nil {
		return err
	}

	result, err := s.coreService.AddAllImages(ctx.Request().Context(), req.Folder)
	return s.respond(ctx, err, OperationResponse{Batch: result})
}

func (s *APIService) listImagesHandler(ctx echo.Context) error {
	images, err := s.coreService.ListImages(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(httpStatusFor(err), OperationResponse{Status: s.coreService.Status()})
	}
	if images == nil {
		images = []*database.ImageInfo{}
	}
	return ctx.JSON(http.StatusOK, ListImagesResponse{Status: s.coreService.Status(), Images: images})
}

func (s *APIService) getImageHandler(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	image, err := s.coreService.GetImage(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(httpStatusFor(err), OperationResponse{Status: s.coreService.Status()})
	}

	ctx.Response().Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": image.Caption}))
	return ctx.Blob(http.StatusOK, http.DetectContentType(image.Image), image.Image)
}

func (s *APIService) deleteImageHandler(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	err = s.coreService.DeleteImage(ctx.Request().Context(), id)
	return s.respond(ctx, err, OperationResponse{ID: id})
}

// respond writes the current status alongside the operation payload.
func (s *APIService) respond(ctx echo.Context, err error, response OperationResponse) error {
	response.Status = s.coreService.Status()
	code := httpStatusFor(err)
	if code >= http.StatusInternalServerError {
		slog.Error("operation failed",
			"status", code, "route", ctx.Path(), "error", err)
	}
	return ctx.JSON(code, response)
}

func httpStatusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, core.ErrSchemaAlreadyExists):
		return http.StatusOK
	case errors.Is(err, core.ErrNotConnected):
		return http.StatusConflict
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConnection):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func bindAndValidate(ctx echo.Context, req any) error {
	if err := ctx.Bind(req); err != nil {
		slog.Warn("failed to bind request body", "route", ctx.Path(), "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "received invalid request body")
	}
	return ctx.Validate(req)
}

func parseID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		slog.Warn("invalid image id", "status", http.StatusBadRequest, "id", ctx.Param("id"))
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid image ID")
	}
	return id, nil
}
