package model

import (
	"mime/multipart"
)

// AlignUploadRequest 文档对齐请求
// 字段名沿用前端表单：jtdFile 为日文文档，docFile 为英文文档
type AlignUploadRequest struct {
	JapaneseFile *multipart.FileHeader `form:"jtdFile" binding:"required"` // 日文文档
	EnglishFile  *multipart.FileHeader `form:"docFile" binding:"required"` // 英文文档
}

// AlignTextRequest 文本对齐请求
// 两侧都为空时返回空结果
type AlignTextRequest struct {
	Japanese []string `json:"ja" binding:"max=5000"` // 日文段落
	English  []string `json:"en" binding:"max=5000"` // 英文段落
	Lines    bool     `json:"lines"`                 // 为true时输入按行处理，先重建段落
}

// ExtractRequest 段落提取请求
type ExtractRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"` // 待提取的文档
}
