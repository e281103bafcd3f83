package rest

import (
	"errors"
	"net/http"

	"cms-search/domain"
	"cms-search/internal/auth"
	authmw "cms-search/internal/auth/middleware"
	"cms-search/logger"
	"cms-search/usecase"

	"github.com/labstack/echo/v4"
)

// Handler contains all HTTP handlers of the search service.
type Handler struct {
	search  *usecase.SearchContentUsecase
	legacy  *usecase.LegacySearchUsecase
	sitemap *usecase.BuildSitemapUsecase
	health  *usecase.SearchHealthUsecase
	reindex *usecase.ReindexOrgUsecase
	manage  *usecase.ManageContentUsecase
}

type HandlerDeps struct {
	Search  *usecase.SearchContentUsecase
	Legacy  *usecase.LegacySearchUsecase
	Sitemap *usecase.BuildSitemapUsecase
	Health  *usecase.SearchHealthUsecase
	Reindex *usecase.ReindexOrgUsecase
	Manage  *usecase.ManageContentUsecase
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		search:  deps.Search,
		legacy:  deps.Legacy,
		sitemap: deps.Sitemap,
		health:  deps.Health,
		reindex: deps.Reindex,
		manage:  deps.Manage,
	}
}

// RegisterRoutes mounts public routes unauthenticated and internal routes behind service tokens.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware *authmw.AuthMiddleware) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/v1/search/health", h.SearchHealth)

	public := e.Group("/v1/public/orgs/:orgSlug")
	public.GET("/search", h.SearchContent)
	public.GET("/articles/search", h.SearchArticlesLegacy)
	public.GET("/sitemap.xml", h.Sitemap)

	internal := e.Group("/v1/internal/orgs/:orgId")
	internal.POST("/reindex", h.ReindexOrg, authMiddleware.RequireServiceAuth(auth.PermissionReindex))
	internal.PUT("/contents/:type/:id", h.SaveContent, authMiddleware.RequireServiceAuth(auth.PermissionWrite))
	internal.DELETE("/contents/:type/:id", h.DeleteContent, authMiddleware.RequireServiceAuth(auth.PermissionWrite))
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func searchInput(c echo.Context) usecase.SearchContentInput {
	return usecase.SearchContentInput{
		OrgSlug:  c.Param("orgSlug"),
		Q:        c.QueryParam("q"),
		Locale:   c.QueryParam("locale"),
		Type:     c.QueryParam("type"),
		Category: c.QueryParam("category"),
		Tag:      c.QueryParam("tag"),
		Author:   c.QueryParam("author"),
		Limit:    c.QueryParam("limit"),
		Offset:   c.QueryParam("offset"),
	}
}

// GET /v1/public/orgs/:orgSlug/search
func (h *Handler) SearchContent(c echo.Context) error {
	out, err := h.search.Execute(c.Request().Context(), searchInput(c))
	if err != nil {
		return writeError(c, "search content", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/public/orgs/:orgSlug/articles/search
func (h *Handler) SearchArticlesLegacy(c echo.Context) error {
	out, err := h.legacy.Execute(c.Request().Context(), searchInput(c))
	if err != nil {
		return writeError(c, "legacy search", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/public/orgs/:orgSlug/sitemap.xml
func (h *Handler) Sitemap(c echo.Context) error {
	body, err := h.sitemap.Execute(c.Request().Context(), c.Param("orgSlug"))
	if err != nil {
		return writeError(c, "build sitemap", err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXMLCharsetUTF8, body)
}

// GET /v1/search/health
func (h *Handler) SearchHealth(c echo.Context) error {
	out := h.health.Execute(c.Request().Context())
	status := http.StatusOK
	if out.Status == domain.ProviderStatusError {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, out)
}

// POST /v1/internal/orgs/:orgId/reindex
func (h *Handler) ReindexOrg(c echo.Context) error {
	ctx := logger.WithOrgID(c.Request().Context(), c.Param("orgId"))
	result, err := h.reindex.Execute(ctx, c.Param("orgId"))
	if err != nil {
		return writeError(c, "reindex org", err)
	}
	return c.JSON(http.StatusOK, result)
}

// PUT /v1/internal/orgs/:orgId/contents/:type/:id
func (h *Handler) SaveContent(c echo.Context) error {
	var in usecase.SaveContentInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	contentType := domain.ContentType(c.Param("type"))
	ctx := logger.WithContent(logger.WithOrgID(c.Request().Context(), c.Param("orgId")), string(contentType), c.Param("id"))
	content, err := h.manage.Save(ctx, c.Param("orgId"), contentType, c.Param("id"), in)
	if err != nil {
		return writeError(c, "save content", err)
	}
	return c.JSON(http.StatusOK, content)
}

// DELETE /v1/internal/orgs/:orgId/contents/:type/:id
func (h *Handler) DeleteContent(c echo.Context) error {
	contentType := domain.ContentType(c.Param("type"))
	ctx := logger.WithContent(logger.WithOrgID(c.Request().Context(), c.Param("orgId")), string(contentType), c.Param("id"))
	if err := h.manage.Delete(ctx, c.Param("orgId"), contentType, c.Param("id")); err != nil {
		return writeError(c, "delete content", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError maps domain errors to status codes; anything unrecognized is a logged 500.
func writeError(c echo.Context, operation string, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, domain.ErrOrgNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "organization not found"})
	case errors.Is(err, domain.ErrContentNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "content not found"})
	case errors.Is(err, domain.ErrSearchUnavailable):
		logger.GlobalContext.LogError(c.Request().Context(), operation, err)
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "search unavailable"})
	default:
		logger.GlobalContext.LogError(c.Request().Context(), operation, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
