// Package ez registers gin handlers from typed functions: bind the input,
// check the caller, run the handler, write the envelope.
package ez

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
	resp "docuisine/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group returns an EZ for a sub-path sharing the logger.
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

// Routes exposes the underlying group for handlers that write their own
// response.
func (e EZ) Routes() *gin.RouterGroup { return e.g }

const KeyPrincipal = "principal"

// SetPrincipal records the authenticated caller on the request.
func SetPrincipal(c *gin.Context, p auth.Principal) { c.Set(KeyPrincipal, p) }

// PrincipalOf returns the caller, or nil for anonymous requests.
func PrincipalOf(c *gin.Context) *auth.Principal {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return nil
	}
	p, ok := v.(auth.Principal)
	if !ok {
		return nil
	}
	return &p
}

// Binder selects where the input comes from.
type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindForm  Binder = "form"  // JSON or form body, by Content-Type
	BindNone  Binder = "none"  // handler reads c.Param itself
)

// AErr is a route-level error with an explicit envelope code.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action describes one endpoint: I is the bound input, O the data payload.
type Action[I any, O any] struct {
	Method string
	Path   string
	Binder Binder
	// Auth requires a caller. MinRole implies Auth.
	Auth    bool
	MinRole domain.Role
	// Created answers 201 instead of 200.
	Created bool
	Handler func(c *gin.Context, p *auth.Principal, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		p, err := authorize(c, a.Auth, a.MinRole)
		if err != nil {
			e.Fail(c, err)
			return
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default:
		}
		if bindErr != nil {
			e.Fail(c, bindError(bindErr))
			return
		}

		out, err := a.Handler(c, p, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		if a.Created {
			c.JSON(http.StatusCreated, resp.OK(out))
			return
		}
		resp.JSON(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// POSTFILE handles a multipart upload of a single file in field.
func POSTFILE[O any](e EZ, path, field string, minRole domain.Role, h func(c *gin.Context, p *auth.Principal, data []byte) (O, error)) {
	e.g.POST(path, func(c *gin.Context) {
		p, err := authorize(c, minRole != "", minRole)
		if err != nil {
			e.Fail(c, err)
			return
		}
		fh, err := c.FormFile(field)
		if err != nil {
			e.Fail(c, bindError(err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			e.Fail(c, BadRequest("cannot read uploaded file"))
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			e.Fail(c, bindError(err))
			return
		}

		out, err := h(c, p, data)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp.OK(out))
	})
}

// Fail writes err as an envelope and aborts. Route errors keep their code,
// service errors go through response.FromError; server-side failures are
// logged with their cause.
func (e EZ) Fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			e.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		resp.Abort(c, ae.Code, ae.Error())
		return
	}
	code, msg := resp.FromError(err)
	if code >= resp.CodeServerError {
		e.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	resp.Abort(c, code, msg)
}

func authorize(c *gin.Context, required bool, minRole domain.Role) (*auth.Principal, error) {
	p := PrincipalOf(c)
	if !required && minRole == "" {
		return p, nil
	}
	if p == nil {
		return nil, Unauthorized("not authenticated")
	}
	if minRole != "" {
		if err := auth.RequireRole(*p, minRole); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return BadRequest(err.Error())
}

// ParamID parses the int64 path parameter name.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, BadRequest("invalid " + name)
	}
	return id, nil
}
