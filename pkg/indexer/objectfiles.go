package indexer

import (
	"context"

	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// ObjectFiles indexes counts and types of the content files of an item.
var ObjectFiles = Descriptor{Name: "object_files", New: newObjectFilesIndexer}

type objectFilesIndexer struct {
	record *model.Record
}

func newObjectFilesIndexer(d Deps) FieldIndexer {
	return &objectFilesIndexer{record: d.Record}
}

func (o *objectFilesIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	if o.record.Structural == nil {
		return doc, nil
	}

	var mimeTypes []string
	var files, shelved int
	var size int64
	for _, fs := range o.record.Structural.Contains {
		for _, f := range fs.Files {
			files++
			if f.Shelve {
				shelved++
			}
			size += f.Size
			mimeTypes = resolve.AppendUnique(mimeTypes, f.HasMime)
		}
	}

	doc.SetInt("content_file_count_itsi", files)
	doc.SetInt("shelved_content_file_count_itsi", shelved)
	doc.SetInt("resource_count_itsi", len(o.record.Structural.Contains))
	doc.SetStrings("content_file_mimetypes_ssim", mimeTypes)
	doc["preserved_size_dbtsi"] = size
	return doc, nil
}
