// Package tree renders directory layouts in the familiar ├── / └── style.
//
// Simulate builds the layout an OperationPlan would produce without touching
// the filesystem; FromDirectory reads the same shape from disk. Both return a
// Node so a preview and the committed result can be compared directly.
package tree
