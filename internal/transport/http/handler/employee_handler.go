package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"employee-api/internal/domain"
	"employee-api/internal/service"
	resp "employee-api/internal/transport/http/response"
)

type EmployeeHandler struct {
	svc *service.EmployeeService
	log *zap.Logger
}

func NewEmployeeHandler(svc *service.EmployeeService, log *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, log: log}
}

func (h *EmployeeHandler) Register(g *gin.RouterGroup) {
	emp := g.Group("/employees")
	emp.POST("", h.Create)
	emp.GET("", h.FindAll)
	emp.GET("/by-dni", h.FindByDNI)
	emp.GET("/name", h.FindByName)
	emp.PUT("", h.Update)
	emp.DELETE("/:id", h.Delete)
	emp.POST("/save-all", h.BulkCreate)
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req EmployeeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
		return
	}
	if req.Birthdate != nil && !req.Birthdate.Past(time.Now()) {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, "birthdate must be in the past"))
		return
	}
	e := req.ToEmployee()
	created, err := h.svc.Create(c.Request.Context(), &e)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("employee created", zap.String("id", created.ID))
	c.JSON(http.StatusCreated, created)
}

func (h *EmployeeHandler) FindAll(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
		return
	}
	result, err := h.svc.FindAll(c.Request.Context(), page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *EmployeeHandler) FindByDNI(c *gin.Context) {
	dni := strings.TrimSpace(c.Query("dni"))
	if dni == "" {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, "dni query parameter is required"))
		return
	}
	activeOnly := c.DefaultQuery("active", "true") != "false"
	e, err := h.svc.FindByDNI(c.Request.Context(), dni, activeOnly)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, resp.NewError(resp.CodeNotFound, "employee not found: "+dni))
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *EmployeeHandler) FindByName(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, "name query parameter is required"))
		return
	}
	page, err := pageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
		return
	}
	result, err := h.svc.FindByNameContains(c.Request.Context(), name, true, page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	var req EmployeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
		return
	}
	if req.Birthdate != nil && !req.Birthdate.Past(time.Now()) {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, "birthdate must be in the past"))
		return
	}
	patch := req.ToPatch()
	updated, err := h.svc.Update(c.Request.Context(), &patch)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("employee updated", zap.String("id", updated.ID))
	c.JSON(http.StatusOK, updated)
}

func (h *EmployeeHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	h.log.Info("employee deleted", zap.String("id", id))
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *EmployeeHandler) BulkCreate(c *gin.Context) {
	var reqs []EmployeeCreateRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
		return
	}
	employees := make([]domain.Employee, 0, len(reqs))
	for i := range reqs {
		employees = append(employees, reqs[i].ToEmployee())
	}
	results, err := h.svc.BulkCreate(c.Request.Context(), employees)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *EmployeeHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, resp.NewError(resp.CodeBadRequest, err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, resp.NewError(resp.CodeNotFound, err.Error()))
	case errors.Is(err, service.ErrDuplicate):
		c.JSON(http.StatusConflict, resp.NewError(resp.CodeConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, resp.NewError(resp.CodeServerError, err.Error()))
	}
}

// pageRequest 解析 page/size/sort，sort 形如 "name,desc"
func pageRequest(c *gin.Context) (*domain.PageRequest, error) {
	page := domain.DefaultPageRequest()
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, errors.New("invalid page parameter: " + raw)
		}
		page.Page = n
	}
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, errors.New("invalid size parameter: " + raw)
		}
		if n > 100 {
			n = 100
		}
		page.Size = n
	}
	if raw := c.Query("sort"); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		page.Sort = strings.TrimSpace(field)
		page.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
	}
	return &page, nil
}
