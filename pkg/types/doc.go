// Package types defines the data model shared by the contingency dispatcher and its
// collaborators: requests, provider descriptors and their invocation capability,
// attempt records, dispatch and health-check results, usage statistics, and the
// error taxonomy used to classify provider failures.
package types
