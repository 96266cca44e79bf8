package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/dorindex/internal/model"
)

// ============================================================================
// Basic
// ============================================================================

func TestBasic_Item(t *testing.T) {
	// Given: an item in one collection
	rec := newItem("Test item")
	rec.Version = 4
	rec.Created = ts(t, "2020-01-01T12:00:01Z")
	rec.Modified = ts(t, "2021-03-04T23:05:34Z")
	rec.Type = model.TypeBook
	rec.Structural = &model.Structural{IsMemberOf: []string{"druid:bc999df2323"}}

	// When
	doc := fields(t, Basic, Deps{Record: rec})

	// Then
	assert.Equal(t, Document{
		"id":                           itemID,
		"current_version_isi":          4,
		"obj_label_tesim":              []string{"Test item label"},
		"modified_latest_dttsi":        "2021-03-04T23:05:34Z",
		"created_at_dttsi":             "2020-01-01T12:00:01Z",
		"is_governed_by_ssim":          []string{apoID},
		"is_member_of_collection_ssim": []string{"druid:bc999df2323"},
		"content_type_ssim":            []string{"book"},
	}, doc)
}

func TestBasic_CollectionHasNoContentType(t *testing.T) {
	doc := fields(t, Basic, Deps{Record: newCollection("druid:bc999df2323", "Coll")})

	assert.NotContains(t, doc, "content_type_ssim")
	assert.NotContains(t, doc, "is_member_of_collection_ssim")
}

// ============================================================================
// Rights
// ============================================================================

func TestRightsDescriptions(t *testing.T) {
	tests := []struct {
		name   string
		access model.Access
		want   []string
	}{
		{"dark", model.Access{View: "dark"}, []string{"dark"}},
		{"world", model.Access{View: "world", Download: "world"}, []string{"world"}},
		{"world no download", model.Access{View: "world", Download: "none"}, []string{"world (no-download)"}},
		{"stanford download world view", model.Access{View: "world", Download: "stanford"}, []string{"stanford", "world (no-download)"}},
		{"citation", model.Access{View: "citation-only"}, []string{"citation"}},
		{"location", model.Access{View: "location-based", Location: "music"}, []string{"location: music"}},
		{"world view location download", model.Access{View: "world", Download: "location-based", Location: "m&m"},
			[]string{"world (no-download)", "location: m&m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RightsDescriptions(&tt.access))
		})
	}
}

func TestRights_Fields(t *testing.T) {
	rec := newItem("Test item")
	rec.Access = &model.Access{
		View:                        "world",
		Download:                    "world",
		License:                     "https://creativecommons.org/licenses/by/4.0/legalcode",
		UseAndReproductionStatement: "Property rights reside with the repository.",
		Copyright:                   "Copyright 2021",
	}

	doc := fields(t, Rights, Deps{Record: rec})

	assert.Equal(t, Document{
		"rights_descriptions_ssim": []string{"world"},
		"use_statement_ssim":       []string{"Property rights reside with the repository."},
		"copyright_ssim":           []string{"Copyright 2021"},
		"use_license_machine_ssi":  "CC-BY-4.0",
	}, doc)
}

func TestRights_UnknownLicenseKeepsURI(t *testing.T) {
	rec := newItem("Test item")
	rec.Access = &model.Access{View: "dark", License: "https://example.org/license"}

	doc := fields(t, Rights, Deps{Record: rec})

	assert.Equal(t, "https://example.org/license", doc.String("use_license_machine_ssi"))
}

func TestRights_NoAccess(t *testing.T) {
	assert.Empty(t, fields(t, Rights, Deps{Record: newItem("Test item")}))
}

func TestRoleMetadata_Fields(t *testing.T) {
	// Given: an admin policy granting two roles, one of them twice
	apo := newAdminPolicy(apoID, "test admin policy")
	apo.Administrative.Roles = []model.Role{
		{Name: "dor-apo-manager", Members: []model.RoleMember{
			{Type: "workgroup", Identifier: "sdr:psm-staff"},
			{Type: "sunetid", Identifier: "jdoe"},
		}},
		{Name: "dor-apo-viewer", Members: []model.RoleMember{
			{Type: "workgroup", Identifier: "sdr:viewer-role"},
		}},
		{Name: "dor-apo-manager", Members: []model.RoleMember{
			{Type: "workgroup", Identifier: "sdr:psm-staff"},
			{Type: "workgroup", Identifier: ""},
		}},
	}

	// When
	doc := fields(t, RoleMetadata, Deps{Record: apo})

	// Then: members are listed per role and managers may register
	assert.Equal(t, Document{
		"apo_role_dor-apo-manager_ssim": []string{"workgroup:sdr:psm-staff", "sunetid:jdoe"},
		"apo_role_dor-apo-viewer_ssim":  []string{"workgroup:sdr:viewer-role"},
		"apo_register_permissions_ssim": []string{"workgroup:sdr:psm-staff", "sunetid:jdoe"},
	}, doc)
}

func TestRoleMetadata_NoRoles(t *testing.T) {
	assert.Empty(t, fields(t, RoleMetadata, Deps{Record: newAdminPolicy(apoID, "test admin policy")}))
}

func TestDefaultObjectRights_Fields(t *testing.T) {
	apo := newAdminPolicy(apoID, "test admin policy")
	apo.Administrative.AccessTemplate = &model.Access{
		View:                        "world",
		Download:                    "none",
		License:                     "https://creativecommons.org/publicdomain/zero/1.0/legalcode",
		UseAndReproductionStatement: "Available for reuse.",
	}

	doc := fields(t, DefaultObjectRights, Deps{Record: apo})

	assert.Equal(t, Document{
		"default_rights_descriptions_ssim": []string{"world (no-download)"},
		"use_statement_ssim":               []string{"Available for reuse."},
		"use_license_machine_ssi":          "CC0-1.0",
	}, doc)
}

func TestDefaultObjectRights_NoTemplate(t *testing.T) {
	assert.Empty(t, fields(t, DefaultObjectRights, Deps{Record: newAdminPolicy(apoID, "test admin policy")}))
}

// ============================================================================
// Embargo
// ============================================================================

func TestEmbargo_Fields(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tests := []struct {
		name    string
		release time.Time
		status  string
	}{
		{"future release date", now.AddDate(1, 0, 0), "embargoed"},
		{"past release date", now.AddDate(-1, 0, 0), "released"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newItem("Test item")
			rec.Access = &model.Access{View: "dark", Embargo: &model.Embargo{ReleaseDate: tt.release, View: "world"}}

			doc := fields(t, Embargo, Deps{Record: rec, Now: clock})

			assert.Equal(t, []string{tt.status}, doc.Strings("embargo_status_ssim"))
			assert.Equal(t, []string{FormatTime(tt.release)}, doc.Strings("embargo_release_dtsim"))
		})
	}
}

func TestEmbargo_None(t *testing.T) {
	rec := newItem("Test item")
	rec.Access = &model.Access{View: "world"}
	assert.Empty(t, fields(t, Embargo, Deps{Record: rec}))
}

// ============================================================================
// ObjectFiles
// ============================================================================

func TestObjectFiles_Fields(t *testing.T) {
	rec := newItem("Test item")
	rec.Structural = &model.Structural{Contains: []model.FileSet{
		{Type: "page", Files: []model.File{
			{Filename: "page1.jp2", HasMime: "image/jp2", Size: 100, Shelve: true},
			{Filename: "page1.tif", HasMime: "image/tiff", Size: 1000},
		}},
		{Type: "page", Files: []model.File{
			{Filename: "page2.jp2", HasMime: "image/jp2", Size: 200, Shelve: true},
		}},
	}}

	doc := fields(t, ObjectFiles, Deps{Record: rec})

	assert.Equal(t, Document{
		"content_file_count_itsi":         3,
		"shelved_content_file_count_itsi": 2,
		"resource_count_itsi":             2,
		"content_file_mimetypes_ssim":     []string{"image/jp2", "image/tiff"},
		"preserved_size_dbtsi":            int64(1300),
	}, doc)
}

func TestObjectFiles_NoStructural(t *testing.T) {
	assert.Empty(t, fields(t, ObjectFiles, Deps{Record: newItem("Test item")}))
}
