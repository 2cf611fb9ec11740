// Package pipeline executes the crawl stages for one seed in sequence.
//
// A run is four stages: crawl the service, scan the fetched pages for
// leaked credentials, persist new discoveries, and send alerts. Each stage
// is a Step that receives the accumulated report and modifies it.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
//
// The pipeline also supports batch processing of multiple seeds with
// concurrency control using errgroup. The default is one seed at a time.
package pipeline
