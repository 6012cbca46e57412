// Package preview implements the long-running watch and serve modes.
//
// Each watch target owns a debounced single-flight worker: change events are
// collapsed until the project has been quiet for the debounce window, and
// while a run is in progress further events coalesce into exactly one
// follow-up run. Different targets run independently.
package preview
