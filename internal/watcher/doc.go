// Package watcher reports changes to a file repository directory.
//
// Only files the repository loads are reported: records/*.json, the YAML
// side files and the project .dorindex.yaml. fsnotify is used when
// available; otherwise the directory is polled. Events are debounced so an
// editor save or a bulk copy arrives as one batch.
//
//	w, err := watcher.New(watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	go w.Start(ctx, repoDir)
//	for batch := range w.Events() {
//	    // reload and rebuild
//	}
package watcher
