package pipeline

import "errors"

// ErrNoDataset is returned by a sink step that runs before the flatten step.
var ErrNoDataset = errors.New("dataset not built")
