package indexer

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

// Composite is an ordered pipeline of field indexers.
type Composite struct {
	descriptors []Descriptor
}

// NewComposite creates a pipeline running descriptors in the given order.
func NewComposite(descriptors ...Descriptor) *Composite {
	return &Composite{descriptors: descriptors}
}

// Names returns the indexer names in pipeline order.
func (c *Composite) Names() []string {
	names := make([]string, len(c.descriptors))
	for i, d := range c.descriptors {
		names[i] = d.Name
	}
	return names
}

// New binds every indexer of the pipeline to deps.
func (c *Composite) New(deps Deps) *Instance {
	inst := &Instance{id: deps.ID}
	for _, d := range c.descriptors {
		inst.names = append(inst.names, d.Name)
		inst.indexers = append(inst.indexers, d.New(deps))
	}
	return inst
}

// Instance is a pipeline bound to one record.
type Instance struct {
	id       string
	names    []string
	indexers []FieldIndexer
}

// Document runs each indexer in order and merges the results; later
// indexers overwrite earlier fields on collision. The first indexer error
// aborts the document.
func (i *Instance) Document(ctx context.Context) (Document, error) {
	doc := Document{}
	for n, idx := range i.indexers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := idx.Fields(ctx)
		if err != nil {
			return nil, errors.New(errors.ErrCodeIndexFailed,
				fmt.Sprintf("%s indexer failed for %s", i.names[n], i.id), err).
				WithDetail("id", i.id).
				WithDetail("indexer", i.names[n])
		}
		doc.Merge(part)
	}
	return doc, nil
}
