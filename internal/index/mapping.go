package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping 构建索引映射：按doctype区分文档与文件两种记录
func buildIndexMapping() mapping.IndexMapping {
	documentMapping := bleve.NewDocumentMapping()
	documentMapping.AddFieldMappingsAt(FieldDocType, bleve.NewKeywordFieldMapping())
	documentMapping.AddFieldMappingsAt(FieldDocumentID, bleve.NewKeywordFieldMapping())
	for _, field := range DocumentTextFields {
		documentMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	fileMapping := bleve.NewDocumentMapping()
	fileMapping.AddFieldMappingsAt(FieldDocType, bleve.NewKeywordFieldMapping())
	fileMapping.AddFieldMappingsAt(FieldDocumentID, bleve.NewKeywordFieldMapping())
	fileMapping.AddFieldMappingsAt(FieldFileName, bleve.NewTextFieldMapping())
	fileMapping.AddFieldMappingsAt(FieldContent, bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.TypeField = FieldDocType
	indexMapping.AddDocumentMapping(DocTypeDocument, documentMapping)
	indexMapping.AddDocumentMapping(DocTypeFile, fileMapping)

	return indexMapping
}
