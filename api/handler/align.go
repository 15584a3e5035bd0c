package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fyerfyer/treaty-aligner/api/middleware"
	"github.com/fyerfyer/treaty-aligner/api/model"
	"github.com/fyerfyer/treaty-aligner/internal/alignment"
	"github.com/fyerfyer/treaty-aligner/internal/document"
	"github.com/fyerfyer/treaty-aligner/internal/llm"
	"github.com/fyerfyer/treaty-aligner/internal/services"
)

// DefaultMaxUploadSize 默认的请求体大小上限
const DefaultMaxUploadSize int64 = 32 << 20

// AlignHandler 处理对齐相关的API请求
type AlignHandler struct {
	alignment     *services.AlignmentService  // 对齐服务
	extraction    *services.ExtractionService // 文档提取服务
	maxUploadSize int64                       // 请求体大小上限
	logger        *logrus.Logger              // 日志记录器
}

// AlignHandlerOption 处理器配置选项
type AlignHandlerOption func(*AlignHandler)

// WithMaxUploadSize 设置请求体大小上限
func WithMaxUploadSize(size int64) AlignHandlerOption {
	return func(h *AlignHandler) {
		if size > 0 {
			h.maxUploadSize = size
		}
	}
}

// NewAlignHandler 创建对齐处理器
func NewAlignHandler(alignmentService *services.AlignmentService, extractionService *services.ExtractionService, opts ...AlignHandlerOption) *AlignHandler {
	h := &AlignHandler{
		alignment:     alignmentService,
		extraction:    extractionService,
		maxUploadSize: DefaultMaxUploadSize,
		logger:        middleware.GetLogger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AlignDocuments 上传日文和英文文档并对齐
// POST /api/align
func (h *AlignHandler) AlignDocuments(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	var req model.AlignUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			h.writeAlignError(c, h.emptyResponse(), err)
			return
		}
		h.logger.WithError(err).Warn("Invalid align request")
		middleware.HandleError(c, middleware.NewValidationError("both jtdFile and docFile are required", err.Error()))
		return
	}

	for _, fh := range []*multipart.FileHeader{req.JapaneseFile, req.EnglishFile} {
		if !h.extraction.Supports(fh.Filename) {
			middleware.HandleError(c, middleware.NewValidationError("unsupported file type", fh.Filename))
			return
		}
	}

	jpFile, err := req.JapaneseFile.Open()
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to open uploaded file", err.Error()))
		return
	}
	defer jpFile.Close()

	enFile, err := req.EnglishFile.Open()
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to open uploaded file", err.Error()))
		return
	}
	defer enFile.Close()

	resp := h.emptyResponse()
	resp.SourceFile = req.JapaneseFile.Filename
	resp.TargetFile = req.EnglishFile.Filename

	result, err := h.alignment.AlignUploads(c.Request.Context(),
		services.Upload{Name: req.JapaneseFile.Filename, Reader: jpFile},
		services.Upload{Name: req.EnglishFile.Filename, Reader: enFile},
	)
	if err != nil {
		h.writeAlignError(c, resp, err)
		return
	}

	resp.Pairs = result.Pairs
	resp.Coverage = model.NewCoverageInfo(result.Coverage)
	h.writeSuccess(c, resp)
}

// AlignText 对齐已经分好段落的文本
// POST /api/align/text
func (h *AlignHandler) AlignText(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	var req model.AlignTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isBodyTooLarge(err) {
			h.writeAlignError(c, h.emptyResponse(), err)
			return
		}
		h.logger.WithError(err).Warn("Invalid align text request")
		middleware.HandleError(c, middleware.NewValidationError("invalid request body", err.Error()))
		return
	}

	japanese, english := req.Japanese, req.English
	if req.Lines {
		japanese = document.Reconstruct(japanese)
		english = document.Reconstruct(english)
	}

	resp := h.emptyResponse()

	pairs, err := h.alignment.Align(c.Request.Context(), japanese, english)
	if err != nil {
		h.writeAlignError(c, resp, err)
		return
	}

	resp.Pairs = pairs
	resp.Coverage = model.NewCoverageInfo(alignment.CheckCoverage(pairs, japanese, english))
	h.writeSuccess(c, resp)
}

// ExtractDocument 提取单个文档的段落
// POST /api/extract
func (h *AlignHandler) ExtractDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	var req model.ExtractRequest
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			middleware.HandleError(c, middleware.NewRequestTooLargeError(err.Error()))
			return
		}
		middleware.HandleError(c, middleware.NewValidationError("file is required", err.Error()))
		return
	}

	if !h.extraction.Supports(req.File.Filename) {
		middleware.HandleError(c, middleware.NewValidationError("unsupported file type", req.File.Filename))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to open uploaded file", err.Error()))
		return
	}
	defer file.Close()

	paragraphs, err := h.extraction.ExtractUpload(c.Request.Context(),
		services.Upload{Name: req.File.Filename, Reader: file})
	if err != nil {
		status := StatusForError(err)
		middleware.HandleError(c, middleware.NewExtractionError(status, "failed to extract document", err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ExtractResponse{
		FileName:   req.File.Filename,
		Paragraphs: paragraphs,
		Count:      len(paragraphs),
	}))
}

// Health 健康检查
// GET /api/health
func (h *AlignHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:   "ok",
		Provider: h.alignment.Provider(),
	})
}

func (h *AlignHandler) writeSuccess(c *gin.Context, resp model.AlignResponse) {
	body := model.NewSuccessResponse(resp)
	body.TraceID = middleware.GetTraceID(c)
	c.JSON(http.StatusOK, body)
}

func (h *AlignHandler) emptyResponse() model.AlignResponse {
	return model.AlignResponse{
		SourceLang: alignment.LangJapanese,
		TargetLang: alignment.LangEnglish,
		Provider:   h.alignment.Provider(),
	}
}

// isBodyTooLarge 请求体超过 MaxBytesReader 的上限
func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// writeAlignError 返回错误状态码，响应体中带占位对齐结果
func (h *AlignHandler) writeAlignError(c *gin.Context, resp model.AlignResponse, err error) {
	status := StatusForError(err)

	h.logger.WithFields(logrus.Fields{
		middleware.FieldTraceID: middleware.GetTraceID(c),
		middleware.FieldStatus:  status,
		middleware.FieldError:   err.Error(),
	}).Error("Alignment request failed")

	resp.Pairs = alignment.FallbackPairs(err)
	resp.Error = err.Error()

	body := model.NewErrorResponse(status, "alignment failed")
	body.Data = resp
	body.TraceID = middleware.GetTraceID(c)
	c.JSON(status, body)
}

// StatusForError 根据错误类型选择HTTP状态码
func StatusForError(err error) int {
	var extractionErr *document.ExtractionError
	var providerErr llm.ProviderError
	var malformedErr *alignment.MalformedResponseError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &extractionErr):
		switch {
		case errors.Is(err, document.ErrUnsupportedFormat):
			return http.StatusUnsupportedMediaType
		case errors.Is(err, document.ErrConverterTimeout):
			return http.StatusGatewayTimeout
		default:
			return http.StatusUnprocessableEntity
		}
	case errors.As(err, &providerErr):
		if providerErr.Code == llm.ErrCodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &malformedErr):
		return http.StatusBadGateway
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
