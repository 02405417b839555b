package main

import (
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const catalogDebounce = 150 * time.Millisecond

// catalogChangedMsg is sent to the shell after the catalog file settles.
type catalogChangedMsg struct{}

// watchCatalog reports changes to the catalog file at path. The parent
// directory is watched so that editors replacing the file by rename are
// seen. Bursts of events are coalesced into one notification.
func watchCatalog(path string) (<-chan struct{}, func() error, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve catalog path %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	events := make(chan struct{}, 1)

	go func() {
		defer close(events)

		var pending <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				pending = time.After(catalogDebounce)

			case <-pending:
				pending = nil
				select {
				case events <- struct{}{}:
				default:
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return events, watcher.Close, nil
}

// waitForCatalogChange blocks until the next change notification.
func waitForCatalogChange(events <-chan struct{}) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return catalogChangedMsg{}
	}
}
