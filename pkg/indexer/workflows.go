package indexer

import (
	"context"
	"slices"
	"strings"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/resolve"
)

// Workflows indexes the state of the latest execution of every workflow,
// the overall processing status and the milestone timestamps.
var Workflows = Descriptor{Name: "workflows", New: newWorkflowsIndexer}

type workflowsIndexer struct {
	deps Deps
}

func newWorkflowsIndexer(d Deps) FieldIndexer {
	return &workflowsIndexer{deps: d}
}

func (i *workflowsIndexer) Fields(ctx context.Context) (Document, error) {
	doc := Document{}
	if i.deps.Workflows == nil {
		return doc, nil
	}

	state, err := i.deps.Workflows.WorkflowStatus(ctx, i.deps.ID, i.deps.Record.Version)
	if err != nil {
		return nil, errors.New(errors.ErrCodeWorkflowFailed, "workflow status", err).
			WithDetail("id", i.deps.ID)
	}
	if state == nil {
		return doc, nil
	}

	for _, wf := range state.Workflows {
		mergeWorkflow(doc, workflowFields(wf))
	}
	doc.SetString("status_ssi", state.Display)
	doc.SetString("processing_status_text_ssi", state.DisplaySimplified)
	milestoneFields(doc, state.Milestones)
	return doc, nil
}

// workflowFields renders one workflow as name, process and status
// permutations so that any prefix can be faceted on.
func workflowFields(wf model.Workflow) Document {
	var wps, wsp, swp, errs []string
	wps = append(wps, wf.Name)
	wsp = append(wsp, wf.Name)
	for _, p := range wf.Processes {
		if p.Status == "" {
			continue
		}
		wps = resolve.AppendUnique(wps, join(wf.Name, p.Name), join(wf.Name, p.Name, p.Status))
		wsp = resolve.AppendUnique(wsp, join(wf.Name, p.Status), join(wf.Name, p.Status, p.Name))
		swp = resolve.AppendUnique(swp, p.Status, join(p.Status, wf.Name), join(p.Status, wf.Name, p.Name))
		if p.ErrorMessage != "" {
			errs = resolve.AppendUnique(errs, join(wf.Name, p.Name, p.ErrorMessage))
		}
	}

	doc := Document{}
	doc.SetStrings("wf_ssim", []string{wf.Name})
	doc.SetStrings("wf_wps_ssim", wps)
	doc.SetStrings("wf_wsp_ssim", wsp)
	doc.SetStrings("wf_swp_ssim", swp)
	doc.SetStrings("wf_error_ssim", errs)
	return doc
}

// mergeWorkflow folds one workflow's fields into doc. List fields
// accumulate; anything else is overwritten by the later workflow.
func mergeWorkflow(doc, wf Document) {
	for k, v := range wf {
		add, ok := v.([]string)
		if !ok {
			doc[k] = v
			continue
		}
		doc[k] = resolve.AppendUnique(doc.Strings(k), add...)
	}
}

// milestoneFields adds <name>_dttsim with every distinct timestamp in
// ascending order, plus the earliest and latest as sortable single values.
func milestoneFields(doc Document, milestones []model.Milestone) {
	var names []string
	dates := make(map[string][]string)
	for _, m := range milestones {
		if m.Name == "" || m.At.IsZero() {
			continue
		}
		if _, ok := dates[m.Name]; !ok {
			names = append(names, m.Name)
		}
		dates[m.Name] = append(dates[m.Name], FormatTime(m.At))
	}

	for _, name := range names {
		sorted := dates[name]
		slices.Sort(sorted)
		sorted = slices.Compact(sorted)
		doc.SetStrings(name+"_dttsim", sorted)
		doc.SetString(name+"_earliest_dttsi", sorted[0])
		doc.SetString(name+"_latest_dttsi", sorted[len(sorted)-1])
	}
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}
