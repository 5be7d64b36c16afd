package controller

import (
	"io"
	"mime"
	"path/filepath"

	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/serverutils"
	"ai-supportdesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	knowledgeService service.IKnowledgeService
}

func NewKnowledgeController(knowledgeService service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{
		knowledgeService: knowledgeService,
	}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("files", c.Upload)
	h.Get("files", c.List)
	h.Delete("files/:id", c.Delete)
}

func (c *knowledgeController) Upload(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.BadRequest("Missing file in form data")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}

	res, err := c.knowledgeService.AddFile(ctx.Context(), orgId, fileHeader.Filename, mimeType, ctx.FormValue("category"), data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload file", res))
}

func (c *knowledgeController) List(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	res, err := c.knowledgeService.ListFiles(ctx.Context(), orgId, ctx.Query("category"), ctx.Query("cursor"), ctx.QueryInt("num_items"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list files", res))
}

func (c *knowledgeController) Delete(ctx *fiber.Ctx) error {
	orgId := serverutils.OrgId(ctx)

	entryId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.BadRequest("Malformed entry id")
	}

	if err := c.knowledgeService.DeleteFile(ctx.Context(), orgId, entryId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete file", nil))
}
