package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocument_SettersDropEmptyValues(t *testing.T) {
	doc := Document{}

	doc.SetString("empty_ssi", "")
	doc.SetStrings("empty_ssim", []string{"", ""})
	doc.SetStrings("nil_ssim", nil)
	doc.SetTime("nil_dttsi", nil)
	doc.SetTime("zero_dttsi", &time.Time{})

	assert.Empty(t, doc)
}

func TestDocument_SetStrings_KeepsNonEmptyInOrder(t *testing.T) {
	doc := Document{}
	doc.SetStrings("topic_ssim", []string{"b", "", "a"})
	assert.Equal(t, []string{"b", "a"}, doc.Strings("topic_ssim"))
}

func TestDocument_SetTime_FormatsUTC(t *testing.T) {
	doc := Document{}
	at := time.Date(2021, 3, 4, 18, 5, 34, 0, time.FixedZone("PST", -8*60*60))

	doc.SetTime("modified_latest_dttsi", &at)

	assert.Equal(t, "2021-03-05T02:05:34Z", doc.String("modified_latest_dttsi"))
}

func TestDocument_Merge_LaterWins(t *testing.T) {
	doc := Document{"a_ssi": "first", "b_ssi": "kept"}
	doc.Merge(Document{"a_ssi": "second"})

	assert.Equal(t, "second", doc.String("a_ssi"))
	assert.Equal(t, "kept", doc.String("b_ssi"))
}
