package store

import (
	"encoding/json"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

// Field groups. A document field is placed in a group by its name suffix;
// each group has its own analysis.
const (
	keywordGroup = "kw"
	textGroup    = "txt"
	numericGroup = "num"
	dateGroup    = "dt"
	sourceField  = "source"
)

// entry is the shape handed to bleve.
type entry struct {
	Keyword map[string]any `json:"kw,omitempty"`
	Text    map[string]any `json:"txt,omitempty"`
	Numeric map[string]any `json:"num,omitempty"`
	Date    map[string]any `json:"dt,omitempty"`
	Source  string         `json:"source"`
}

// groupFor maps a field name to its group.
func groupFor(field string) string {
	switch {
	case hasSuffix(field, "_dttsi", "_dttsim", "_dtsim"):
		return dateGroup
	case hasSuffix(field, "_isi", "_itsi", "_dbtsi"):
		return numericGroup
	case hasSuffix(field, "_ssim", "_ssi", "_ss"), field == "id":
		return keywordGroup
	default:
		return textGroup
	}
}

func hasSuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func toEntry(doc indexer.Document) (*entry, error) {
	src, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	e := &entry{
		Keyword: map[string]any{},
		Text:    map[string]any{},
		Numeric: map[string]any{},
		Date:    map[string]any{},
		Source:  string(src),
	}
	for field, v := range doc {
		switch groupFor(field) {
		case keywordGroup:
			e.Keyword[field] = v
		case numericGroup:
			e.Numeric[field] = v
		case dateGroup:
			e.Date[field] = v
		default:
			e.Text[field] = v
		}
	}
	return e, nil
}

// fromSource decodes a stored document, restoring list fields as []string
// and whole numbers as int.
func fromSource(src string) (indexer.Document, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		return nil, err
	}
	doc := indexer.Document{}
	for k, v := range raw {
		switch val := v.(type) {
		case []any:
			list := make([]string, 0, len(val))
			for _, item := range val {
				if s, ok := item.(string); ok {
					list = append(list, s)
				}
			}
			doc[k] = list
		case float64:
			if val == float64(int64(val)) {
				doc[k] = int(val)
			} else {
				doc[k] = val
			}
		default:
			doc[k] = val
		}
	}
	return doc, nil
}

func newIndexMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	m.DefaultAnalyzer = standard.Name

	kw := bleve.NewDocumentMapping()
	kw.DefaultAnalyzer = keyword.Name
	m.DefaultMapping.AddSubDocumentMapping(keywordGroup, kw)

	txt := bleve.NewDocumentMapping()
	txt.DefaultAnalyzer = standard.Name
	m.DefaultMapping.AddSubDocumentMapping(textGroup, txt)

	m.DefaultMapping.AddSubDocumentMapping(numericGroup, bleve.NewDocumentMapping())
	m.DefaultMapping.AddSubDocumentMapping(dateGroup, bleve.NewDocumentMapping())

	src := bleve.NewTextFieldMapping()
	src.Index = false
	src.Store = true
	src.IncludeInAll = false
	src.IncludeTermVectors = false
	src.DocValues = false
	m.DefaultMapping.AddFieldMappingsAt(sourceField, src)

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
