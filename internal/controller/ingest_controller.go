package controller

import (
	"net/url"

	"ai-docqa-be/internal/pkg/serverutils"
	"ai-docqa-be/internal/service"
	"ai-docqa-be/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type IIngestController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Reembed(ctx *fiber.Ctx) error
	DeleteSource(ctx *fiber.Ctx) error
	ListSources(ctx *fiber.Ctx) error
	ListChunks(ctx *fiber.Ctx) error
	GetChunk(ctx *fiber.Ctx) error
}

type ingestController struct {
	ingestionService service.IIngestionService
}

func NewIngestController(ingestionService service.IIngestionService) IIngestController {
	return &ingestController{
		ingestionService: ingestionService,
	}
}

func (c *ingestController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ingest/v1")
	h.Post("", c.Upload)
	h.Post("reembed/:source", c.Reembed)
	h.Get("sources", c.ListSources)
	h.Get("chunks/:chunk_id", c.GetChunk)
	h.Get(":source/chunks", c.ListChunks)
	h.Delete(":source", c.DeleteSource)
}

func (c *ingestController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		return apperr.NewValidation("multipart field 'file' is required")
	}

	res, err := c.ingestionService.Ingest(ctx.Context(), file)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest document", res))
}

func (c *ingestController) Reembed(ctx *fiber.Ctx) error {
	source, err := decodeSourceParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.ingestionService.Reembed(ctx.Context(), source)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Re-embed queued", res))
}

func (c *ingestController) DeleteSource(ctx *fiber.Ctx) error {
	source, err := decodeSourceParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.ingestionService.DeleteSource(ctx.Context(), source)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete source", res))
}

func (c *ingestController) ListSources(ctx *fiber.Ctx) error {
	res, err := c.ingestionService.ListSources(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Ingested sources", res))
}

func (c *ingestController) ListChunks(ctx *fiber.Ctx) error {
	source, err := decodeSourceParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.ingestionService.ListChunks(
		ctx.Context(),
		source,
		ctx.QueryInt("page"),
		ctx.QueryInt("limit"),
		ctx.QueryInt("offset"),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Stored chunks", res))
}

func (c *ingestController) GetChunk(ctx *fiber.Ctx) error {
	chunkID, err := url.PathUnescape(ctx.Params("chunk_id"))
	if err != nil {
		return apperr.NewValidation("chunk_id is not a valid URL-encoded identifier")
	}

	res, err := c.ingestionService.GetChunk(ctx.Context(), chunkID)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Stored chunk", res))
}

// decodeSourceParam handles filenames with URL-escaped characters.
func decodeSourceParam(ctx *fiber.Ctx) (string, error) {
	raw := ctx.Params("source")
	if raw == "" {
		return "", apperr.NewValidation("source is required")
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", apperr.NewValidation("source is not a valid URL-encoded filename")
	}
	return decoded, nil
}
