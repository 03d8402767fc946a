package write

import (
	"os"
	"sync"
)

// Change is a write or removal recorded by DryRunWriter.
type Change struct {
	Path   string `json:"path"`
	Action Action `json:"action"`
	Size   int    `json:"size"`
}

// DryRunWriter records changes instead of making them. It compares against
// the real file system.
type DryRunWriter struct {
	files   FileWriter
	mu      sync.Mutex
	changes []Change
}

func NewDryRunWriter() *DryRunWriter {
	return &DryRunWriter{}
}

func (d *DryRunWriter) Write(path string, content []byte, _ Options) error {
	action := ActionCreate
	if _, err := os.Stat(path); err == nil {
		action = ActionUpdate
	}
	d.record(Change{Path: path, Action: action, Size: len(content)})
	return nil
}

func (d *DryRunWriter) NeedsWrite(path string, content []byte) (bool, error) {
	return d.files.NeedsWrite(path, content)
}

func (d *DryRunWriter) Exists(path string) bool {
	return d.files.Exists(path)
}

func (d *DryRunWriter) Remove(path string) error {
	d.record(Change{Path: path, Action: ActionRemove})
	return nil
}

func (d *DryRunWriter) record(change Change) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, change)
}

// Changes returns the recorded changes in order.
func (d *DryRunWriter) Changes() []Change {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Change(nil), d.changes...)
}

func (d *DryRunWriter) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = nil
}
