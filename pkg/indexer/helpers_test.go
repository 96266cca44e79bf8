package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/dorindex/internal/model"
)

const (
	itemID = "druid:xx999xx9999"
	apoID  = "druid:gf999hb9999"
)

func newItem(title string) *model.Record {
	rec := &model.Record{
		Type:               model.TypeObject,
		ExternalIdentifier: itemID,
		Label:              "Test item label",
		Version:            1,
		Administrative:     model.Administrative{HasAdminPolicy: apoID},
	}
	if title != "" {
		rec.Description = &model.Description{Title: []model.DescriptiveValue{{Value: title}}}
	}
	return rec
}

func newCollection(id, title string) *model.Record {
	return &model.Record{
		Type:               model.TypeCollection,
		ExternalIdentifier: id,
		Version:            1,
		Administrative:     model.Administrative{HasAdminPolicy: apoID},
		Description:        &model.Description{Title: []model.DescriptiveValue{{Value: title}}},
	}
}

func newAdminPolicy(id, title string) *model.Record {
	return &model.Record{
		Type:               model.TypeAdminPolicy,
		ExternalIdentifier: id,
		Version:            1,
		Description:        &model.Description{Title: []model.DescriptiveValue{{Value: title}}},
	}
}

func fields(t *testing.T, d Descriptor, deps Deps) Document {
	t.Helper()
	doc, err := d.New(deps).Fields(context.Background())
	require.NoError(t, err)
	return doc
}

func ts(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return &v
}
