package web

import (
	"errors"
	"net/http"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "ok", Data: data})
}

func fail(c echo.Context, status int, err error) error {
	return c.JSON(status, Response{Code: status, Message: err.Error()})
}

var validate = validator.New()

// bind 绑定参数, 填默认值后校验
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := defaults.Set(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// errorHandler 统一返回 Response 格式
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	_ = c.JSON(status, Response{Code: status, Message: msg})
}
