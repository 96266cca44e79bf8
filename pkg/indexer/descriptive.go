package indexer

import (
	"context"
	"strconv"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/normalize"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// DescriptiveMetadata indexes titles, contributors, subjects, publication
// data, format facets and full-text search fields.
var DescriptiveMetadata = Descriptor{Name: "descriptive_metadata", New: newDescriptiveMetadataIndexer}

type descriptiveMetadataIndexer struct {
	id          string
	desc        *model.Description
	transformer normalize.Transformer
}

func newDescriptiveMetadataIndexer(d Deps) FieldIndexer {
	t := d.Transformer
	if t == nil {
		t = normalize.Default()
	}
	return &descriptiveMetadataIndexer{id: d.ID, desc: d.Record.Description, transformer: t}
}

func (i *descriptiveMetadataIndexer) Fields(context.Context) (Document, error) {
	doc := Document{}
	desc := i.desc
	if desc == nil {
		return doc, nil
	}

	n, err := i.transformer.Transform(desc, i.id)
	if err != nil {
		return nil, errors.New(errors.ErrCodeTransformFailed, "normalize description", err).
			WithDetail("id", i.id)
	}

	title := resolve.Title(desc.Title)
	doc.SetString("sw_display_title_tesim", title)
	doc.SetString("display_title_ss", title)
	doc.SetStrings("main_title_tenim", resolve.MainTitles(desc.Title))
	doc.SetStrings("full_title_tenim", resolve.FullTitles(desc.Title))

	author := resolve.PrimaryAuthor(desc.Contributor)
	doc.SetString("author_text_nostem_im", author)
	doc.SetString("sw_author_tesim", author)
	doc.SetStrings("contributor_text_nostem_im", resolve.Authors(desc.Contributor))
	doc.SetStrings("contributor_orcids_ssim", resolve.ORCIDs(desc.Contributor))

	doc.SetStrings("topic_ssim", n.TopicFacet)
	doc.SetStrings("topic_tesim", resolve.Topics(desc.Subject, resolve.SubjectTopic))

	doc.SetString("originInfo_date_created_tesim",
		resolve.EventDate(resolve.SelectEvent(desc.Event, resolve.EventCreation), resolve.EventCreation))
	doc.SetString("originInfo_publisher_tesim", resolve.PublisherName(desc.Event))
	doc.SetString("originInfo_place_placeTerm_tesim", resolve.EventPlace(placeEvent(desc.Event)))
	if n.PubYear != 0 {
		doc.SetString("sw_pub_date_facet_ssi", strconv.Itoa(n.PubYear))
	}

	forms := newFormSet(desc)
	doc.SetStrings("sw_format_ssim", forms.swFormat())
	doc.SetStrings("mods_typeOfResource_ssim", forms.resourceTypes())
	doc.SetStrings("sw_genre_ssim", n.Genres)
	doc.SetStrings("sw_language_ssim", n.Languages)
	doc.SetStrings("sw_subject_temporal_ssim", n.Eras)
	doc.SetStrings("sw_subject_geographic_ssim", resolve.Geographic(desc.Subject))

	text := resolve.SearchText(desc)
	doc.SetString("descriptive_tiv", text)
	doc.SetString("descriptive_text_nostem_i", text)
	doc.SetString("descriptive_teiv", text)
	return doc, nil
}

// placeEvent is the first publication event, else the first event.
func placeEvent(events []model.Event) *model.Event {
	for i := range events {
		if events[i].Type == resolve.EventPublication {
			return &events[i]
		}
	}
	if len(events) > 0 {
		return &events[0]
	}
	return nil
}
