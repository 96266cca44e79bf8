// Package indexer assembles flat search documents from repository records.
//
// A document is built by an ordered pipeline of field indexers. Each field
// indexer extracts one cohesive group of fields and knows nothing about the
// others:
//
//	┌──────────────────┐
//	│ Document Builder │  (selects pipeline, resolves parents and tags)
//	└────────┬─────────┘
//	         │
//	┌────────▼─────────┐
//	│    Composite     │  ← runs indexers in order, merges output
//	└────────┬─────────┘
//	         │
//	   ┌─────┼──────┬─────────────┐
//	   │     │      │             │
//	┌──▼──┐┌─▼──┐┌──▼───────┐┌────▼─────┐
//	│Tags ││Desc││Releasable││Workflows │ ...
//	└─────┘└────┘└──────────┘└──────────┘
//
// # Usage
//
//	pipeline := indexer.NewComposite(indexer.AdministrativeTag, indexer.Basic)
//	doc, err := pipeline.New(deps).Document(ctx)
//
// # Output contract
//
// Field names carry index-engine type hints in their suffix (_ssim, _tesim,
// _dttsi, ...). Single-valued fields hold a string or number, multi-valued
// fields a []string. Empty values never appear as keys.
//
// # Errors
//
// Lookup failures of related objects are reported through the injected
// notify.Reporter and degrade the affected fields. Any other error aborts
// the document and is returned wrapped with errors.ErrCodeIndexFailed.
package indexer
