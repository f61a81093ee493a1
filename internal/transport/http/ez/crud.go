package ez

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuisine/internal/core/auth"
	"docuisine/internal/domain"
)

// Service is the slice of the entity service Crud needs.
type Service[T any, P any] interface {
	Create(ctx context.Context, m *T) (*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	GetByKey(ctx context.Context, key ...any) (*T, error)
	Page(ctx context.Context, offset, limit int) ([]T, int64, error)
	Update(ctx context.Context, id int64, patch P) (*T, error)
	Delete(ctx context.Context, id int64) error
}

type CrudConfig[T any, P interface{ Apply(*T) }] struct {
	Svc  Service[T, P]
	Path string // e.g. "/categories"
	// KeyParam adds GET {Path}/{KeyParam}/:{KeyParam}, a lookup by natural key.
	KeyParam string

	// Roles per operation; empty means public.
	ReadRole   domain.Role
	WriteRole  domain.Role
	DeleteRole domain.Role
}

type PageQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
	Size int `form:"size,default=20" binding:"min=1,max=100"`
}

func (q PageQuery) Offset() int { return (q.Page - 1) * q.Size }

type Page[T any] struct {
	List  []T   `json:"list"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

// Crud mounts list/get/create/update/delete for one entity. Create binds
// the patch type and applies it to a zero T, so the same binding rules
// govern both writes.
func Crud[T any, P interface{ Apply(*T) }](e EZ, cfg CrudConfig[T, P]) {
	svc := cfg.Svc

	RegisterAction(e, Action[PageQuery, Page[T]]{
		Method: http.MethodGet, Path: cfg.Path, Binder: BindQuery, MinRole: cfg.ReadRole,
		Handler: func(c *gin.Context, _ *auth.Principal, q *PageQuery) (Page[T], error) {
			items, total, err := svc.Page(c.Request.Context(), q.Offset(), q.Size)
			if err != nil {
				return Page[T]{}, err
			}
			if items == nil {
				items = []T{}
			}
			return Page[T]{List: items, Total: total, Page: q.Page, Size: q.Size}, nil
		},
	})

	RegisterAction(e, Action[struct{}, *T]{
		Method: http.MethodGet, Path: cfg.Path + "/:id", Binder: BindNone, MinRole: cfg.ReadRole,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (*T, error) {
			id, err := ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return svc.Get(c.Request.Context(), id)
		},
	})

	if cfg.KeyParam != "" {
		RegisterAction(e, Action[struct{}, *T]{
			Method: http.MethodGet, Path: cfg.Path + "/" + cfg.KeyParam + "/:" + cfg.KeyParam, Binder: BindNone, MinRole: cfg.ReadRole,
			Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (*T, error) {
				return svc.GetByKey(c.Request.Context(), c.Param(cfg.KeyParam))
			},
		})
	}

	RegisterAction(e, Action[P, *T]{
		Method: http.MethodPost, Path: cfg.Path, Binder: BindJSON, MinRole: cfg.WriteRole, Created: true,
		Handler: func(c *gin.Context, _ *auth.Principal, in *P) (*T, error) {
			var m T
			(*in).Apply(&m)
			return svc.Create(c.Request.Context(), &m)
		},
	})

	RegisterAction(e, Action[P, *T]{
		Method: http.MethodPut, Path: cfg.Path + "/:id", Binder: BindJSON, MinRole: cfg.WriteRole,
		Handler: func(c *gin.Context, _ *auth.Principal, in *P) (*T, error) {
			id, err := ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return svc.Update(c.Request.Context(), id, *in)
		},
	})

	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodDelete, Path: cfg.Path + "/:id", Binder: BindNone, MinRole: cfg.DeleteRole,
		Handler: func(c *gin.Context, _ *auth.Principal, _ *struct{}) (gin.H, error) {
			id, err := ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := svc.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
