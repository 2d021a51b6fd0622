package api

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

const maxImageBytes = 10 << 20

// SuggestionHandler turns a prompt, an optional photo and the caller's
// profile into a model-generated meal suggestion
type SuggestionHandler struct {
	composer    service.IPromptComposer
	inference   service.IInferenceService
	profiles    service.IProfileService
	authService service.IAuthService
	archive     service.IImageArchive
	limit       gin.HandlerFunc
	logger      *zap.Logger
}

func NewSuggestionHandler(
	composer service.IPromptComposer,
	inference service.IInferenceService,
	profiles service.IProfileService,
	authService service.IAuthService,
	logger *zap.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		composer:    composer,
		inference:   inference,
		profiles:    profiles,
		authService: authService,
		logger:      logger.Named("suggestion_handler"),
	}
}

// WithArchive stores uploaded photos before inference
func (h *SuggestionHandler) WithArchive(archive service.IImageArchive) *SuggestionHandler {
	h.archive = archive
	return h
}

// WithRateLimit runs limit after authentication and before the handler
func (h *SuggestionHandler) WithRateLimit(limit gin.HandlerFunc) *SuggestionHandler {
	h.limit = limit
	return h
}

func (h *SuggestionHandler) RegisterRoutes(router *gin.RouterGroup) {
	chain := []gin.HandlerFunc{middleware.OptionalAuthMiddleware(h.authService)}
	if h.limit != nil {
		chain = append(chain, h.limit)
	}
	chain = append(chain, h.Suggest)
	router.POST("/suggestions", chain...)
}

// Suggest accepts either multipart (prompt, image) or JSON {"prompt": ...}
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	ctx := c.Request.Context()

	var req types.SuggestionRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.Respond(c, bindError(err))
		return
	}

	image, filename, err := readImage(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var profile service.ProfileContext = service.NoProfile{}
	owner := ""
	if userID, ok := middleware.UserID(c); ok {
		record, err := h.profiles.GetProfileRecord(ctx, userID)
		if err != nil {
			apperrors.Respond(c, apperrors.Internal(err))
			return
		}
		profile = service.ProfileFromModel(record)
		owner = userID.String()
	}

	var imageKey string
	if h.archive != nil && len(image) > 0 {
		imageKey, err = h.archive.Store(ctx, owner, filename, image)
		if err != nil {
			h.logger.Warn("failed to archive suggestion image", zap.Error(err))
			imageKey = ""
		}
	}

	var imageReader io.Reader
	if len(image) > 0 {
		imageReader = bytes.NewReader(image)
	}
	payload, err := h.composer.Compose(req.Prompt, profile, imageReader)
	if err != nil {
		apperrors.Respond(c, apperrors.Inference(err))
		return
	}

	result, err := h.inference.Generate(ctx, payload)
	if err != nil {
		apperrors.Respond(c, apperrors.Inference(err))
		return
	}

	c.JSON(result.StatusCode, types.SuggestionResponse{
		Response: result.Text,
		ImageKey: imageKey,
	})
}

// readImage returns the optional "image" upload of a multipart request
func readImage(c *gin.Context) ([]byte, string, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, "", nil
	}
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", apperrors.BadRequest("Invalid image upload")
	}
	if header.Size > maxImageBytes {
		return nil, "", apperrors.BadRequest("Image is too large")
	}

	data, err := readUpload(header)
	if err != nil {
		return nil, "", apperrors.BadRequest("Could not read image")
	}
	return data, header.Filename, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImageBytes))
}
