package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"asha/docs"
	"asha/internal/auth"
	"asha/internal/config"
	apperrors "asha/internal/errors"
	"asha/internal/handler"
	"asha/internal/service"
)

// bodyLimit leaves headroom above the 10MB upload cap for multipart framing.
const bodyLimit = "11M"

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	listingHandler *handler.ListingHandler,
) {
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Chat routes are public; sessions are identified by the caller's sessionId.
	e.POST("/chat", chatHandler.PlainChat)
	e.POST("/upload", chatHandler.UploadResume)

	api := e.Group("/api")

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	api.POST("/gemini", chatHandler.Converse)
	api.POST("/resume-upload", chatHandler.UploadResume)
	api.POST("/analyze-job-link", chatHandler.AnalyzeJobLink)
	api.POST("/search-opportunities", chatHandler.SearchOpportunities)
	api.GET("/chat/history/:sessionId", chatHandler.History)
	api.POST("/feedback", chatHandler.Feedback)

	api.GET("/jobs", listingHandler.Jobs)
	api.GET("/events", listingHandler.Events)
	api.GET("/mentorship", listingHandler.Mentorship)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return jwtService.ValidateToken(token)
		},
	}), rejectRevoked(authService))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/refresh", authHandler.Refresh)
	secured.GET("/me", userHandler.Me)
}

// rejectRevoked refuses tokens that were logged out.
func rejectRevoked(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*auth.Claims)
			if !ok || authService.IsRevoked(c.Request().Context(), claims.ID) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			slog.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	})
}

// ErrorHandler renders every error as {"message": ...}. Errors that are not
// already HTTP errors are mapped through the domain error table, which hides
// internal detail.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		mapped := apperrors.MapErrorToHTTP(err)
		if mapped.StatusCode >= http.StatusInternalServerError {
			slog.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		}
		he = echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
	}

	var body apperrors.ErrorResponse
	switch m := he.Message.(type) {
	case apperrors.ErrorResponse:
		body = m
	case string:
		body = apperrors.ErrorResponse{Message: m}
	case error:
		body = apperrors.ErrorResponse{Message: m.Error()}
	default:
		body = apperrors.ErrorResponse{Message: http.StatusText(he.Code)}
	}
	if he.Code >= http.StatusInternalServerError && body.Code == "" {
		body = apperrors.ErrorResponse{Message: "Something went wrong!", Code: "INTERNAL_ERROR"}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
