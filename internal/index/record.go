package index

import (
	"fmt"
	"strconv"

	"github.com/docshelf/backend-go/internal/models"
)

// 索引记录类型
const (
	DocTypeDocument = "document"
	DocTypeFile     = "file"
)

// 索引字段名
const (
	FieldDocType     = "doctype"
	FieldDocumentID  = "document_id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldSubject     = "subject"
	FieldIdentifier  = "identifier"
	FieldPublisher   = "publisher"
	FieldFormat      = "format"
	FieldSource      = "source"
	FieldType        = "type"
	FieldCoverage    = "coverage"
	FieldRights      = "rights"
	FieldFileName    = "filename"
	FieldContent     = "content"
)

// DocumentTextFields 文档记录的全文检索字段
var DocumentTextFields = []string{
	FieldTitle,
	FieldDescription,
	FieldSubject,
	FieldIdentifier,
	FieldPublisher,
	FieldFormat,
	FieldSource,
	FieldType,
	FieldCoverage,
	FieldRights,
}

// Record 索引记录，对应一个文档或一个文件
type Record struct {
	ID   string
	Body map[string]interface{}
}

// DocumentKey 生成文档记录的索引键
func DocumentKey(documentID uint) string {
	return fmt.Sprintf("%s:%d", DocTypeDocument, documentID)
}

// FileKey 生成文件记录的索引键
func FileKey(fileID uint) string {
	return fmt.Sprintf("%s:%d", DocTypeFile, fileID)
}

// NewDocumentRecord 从文档实体构建索引记录，空字段不写入
func NewDocumentRecord(doc *models.Document) *Record {
	body := map[string]interface{}{
		FieldDocType:    DocTypeDocument,
		FieldDocumentID: strconv.FormatUint(uint64(doc.DocumentID), 10),
		FieldTitle:      doc.Title,
	}

	putIfPresent(body, FieldDescription, doc.Description)
	putIfPresent(body, FieldSubject, doc.Subject)
	putIfPresent(body, FieldIdentifier, doc.Identifier)
	putIfPresent(body, FieldPublisher, doc.Publisher)
	putIfPresent(body, FieldFormat, doc.Format)
	putIfPresent(body, FieldSource, doc.Source)
	putIfPresent(body, FieldType, doc.DocType)
	putIfPresent(body, FieldCoverage, doc.Coverage)
	putIfPresent(body, FieldRights, doc.Rights)

	return &Record{
		ID:   DocumentKey(doc.DocumentID),
		Body: body,
	}
}

// NewFileRecord 从文件实体构建索引记录，空字段不写入
func NewFileRecord(file *models.DocFile) *Record {
	body := map[string]interface{}{
		FieldDocType:    DocTypeFile,
		FieldDocumentID: strconv.FormatUint(uint64(file.DocumentID), 10),
	}

	putIfPresent(body, FieldFileName, file.FileName)
	putIfPresent(body, FieldContent, file.Content)

	return &Record{
		ID:   FileKey(file.FileID),
		Body: body,
	}
}

func putIfPresent(body map[string]interface{}, field, value string) {
	if value != "" {
		body[field] = value
	}
}
