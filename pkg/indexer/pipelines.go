package indexer

import "github.com/Aman-CERP/dorindex/internal/model"

// Pipelines per record kind. Agreements and unknown kinds use the item
// pipeline.
var (
	AdminPolicyPipeline = NewComposite(
		AdministrativeTag,
		Basic,
		RoleMetadata,
		DefaultObjectRights,
		IdentityMetadata,
		DescriptiveMetadata,
		Identifiable,
		Workflows,
	)

	CollectionPipeline = NewComposite(
		AdministrativeTag,
		Basic,
		Rights,
		IdentityMetadata,
		DescriptiveMetadata,
		Identifiable,
		Releasable,
		Workflows,
	)

	ItemPipeline = NewComposite(
		AdministrativeTag,
		Basic,
		Rights,
		IdentityMetadata,
		DescriptiveMetadata,
		Embargo,
		ObjectFiles,
		Identifiable,
		CollectionTitle,
		Releasable,
		Workflows,
	)
)

// PipelineFor returns the pipeline for a record kind.
func PipelineFor(kind model.Kind) *Composite {
	switch kind {
	case model.KindAdminPolicy:
		return AdminPolicyPipeline
	case model.KindCollection:
		return CollectionPipeline
	default:
		return ItemPipeline
	}
}
